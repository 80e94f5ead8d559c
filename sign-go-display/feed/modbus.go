package feed

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"sign-tools/sign-go-display/config"
	"sign-tools/sign-go-display/display"
	"sign-tools/sign-go-display/words"
)

// Modbus holding-register reads cap out at 125 registers per request.
const maxRegsPerRead = 120

// RunModbusFeed is the pull-mode alternative to the push feed: instead of
// the PLC connecting in, the controller polls the full word image over
// Modbus TCP once per second. Used for PLCs without a free TSEND_C slot.
func RunModbusFeed(ctx context.Context, wg *sync.WaitGroup, state *display.SignState, logger *log.Logger, target string) {
	defer wg.Done()
	logger.Println("Modbus Feed Goroutine Started.")

	for {
		select {
		case <-ctx.Done():
			logger.Println("Modbus Feed Goroutine shutting down.")
			return
		default:
		}

		state.SetStatus(fmt.Sprintf("Connecting to Modbus target %s...", target))
		handler := modbus.NewTCPClientHandler(target)
		handler.Timeout = 5 * time.Second
		handler.SlaveId = config.DefaultModbusSlaveID
		if err := handler.Connect(); err != nil {
			logger.Printf("Modbus connect failed: %v. Retrying.", err)
			state.SetStatus(fmt.Sprintf("Modbus connect failed: %v", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		client := modbus.NewClient(handler)
		logger.Printf("Connected to Modbus target %s", target)
		state.SetStatus(fmt.Sprintf("Polling %s", target))

		pollLoop(ctx, client, state, logger)
		handler.Close()

		select {
		case <-ctx.Done():
			logger.Println("Modbus Feed Goroutine shutting down.")
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func pollLoop(ctx context.Context, client modbus.Client, state *display.SignState, logger *log.Logger) {
	interval := time.Duration(config.DefaultEvalIntervalS * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := make(words.Snapshot, config.RegisterCount)
			var raw []byte
			for start := 0; start < config.RegisterCount; start += maxRegsPerRead {
				count := config.RegisterCount - start
				if count > maxRegsPerRead {
					count = maxRegsPerRead
				}
				results, err := client.ReadHoldingRegisters(uint16(start), uint16(count))
				if err != nil {
					logger.Printf("Modbus read error at register %d: %v", start, err)
					return
				}
				if len(results) < count*2 {
					logger.Printf("Modbus short read at register %d: %d bytes", start, len(results))
					return
				}
				for i := 0; i < count; i++ {
					snap[start+i] = binary.BigEndian.Uint16(results[i*2:])
				}
				raw = append(raw, results[:count*2]...)
			}
			rxTime := time.Now()
			state.ReplaceSnapshot(snap)
			state.UpdateRx(raw, rxTime)
		}
	}
}
