package feed

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"go.bug.st/serial"

	"sign-tools/sign-go-display/config"
	"sign-tools/sign-go-display/display"
	"sign-tools/sign-go-display/eventlog"
	"sign-tools/sign-go-display/words"
)

// PacketSize is the fixed wire size of one register snapshot: every word of
// the PLC image as a big-endian uint16, pushed unframed at a fixed cadence.
const PacketSize = config.RegisterCount * 2

// maxAccumulated bounds the reassembly buffer. A stream that drifts past
// this without yielding a whole packet is misframed and gets dropped.
const maxAccumulated = PacketSize * 3

// ParsePacket decodes one complete push packet into a register snapshot.
func ParsePacket(data []byte) (words.Snapshot, error) {
	if len(data) != PacketSize {
		return nil, fmt.Errorf("packet size %d, want %d", len(data), PacketSize)
	}
	snap := make(words.Snapshot, config.RegisterCount)
	for i := 0; i < config.RegisterCount; i++ {
		snap[i] = binary.BigEndian.Uint16(data[i*2:])
	}
	return snap, nil
}

// RunFeed ingests PLC register snapshots and publishes them into the sign
// state. mode selects the transport: "tcp" listens for the PLC's push
// connection on target, "serial" reads the same packet stream from a serial
// port. The PLC owns the cadence; the feed just reassembles and swaps.
func RunFeed(ctx context.Context, wg *sync.WaitGroup, state *display.SignState, logger *log.Logger, mode, target string) {
	defer wg.Done()
	logger.Println("Feed Goroutine Started.")

	switch mode {
	case "serial":
		runSerialFeed(ctx, state, logger, target)
	default:
		runTCPFeed(ctx, state, logger, target)
	}
	logger.Println("Feed Goroutine shutting down.")
}

func runTCPFeed(ctx context.Context, state *display.SignState, logger *log.Logger, listenAddr string) {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", listenAddr)
	if err != nil {
		logger.Printf("FATAL: Could not listen on %s: %v", listenAddr, err)
		state.SetStatus(fmt.Sprintf("Listen failed: %v", err))
		return
	}
	defer ln.Close()
	logger.Printf("Listening for PLC feed on %s", listenAddr)
	state.SetStatus(fmt.Sprintf("Waiting for PLC on %s...", listenAddr))

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			logger.Printf("Accept error: %v", err)
			continue
		}
		remote := conn.RemoteAddr().String()
		logger.Printf("PLC connected from %s", remote)
		state.SetStatus(fmt.Sprintf("PLC connected (%s)", remote))
		state.EventChan <- eventlog.Event{
			Timestamp: time.Now(), Level: "info", Category: "feed",
			Message: "PLC connected", Details: remote,
		}

		// One PLC at a time. TSEND_C reconnects after any drop, so a
		// new connection simply supersedes the old loop here.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-done:
			}
		}()
		readPackets(ctx, conn, state, logger)
		close(done)
		conn.Close()

		logger.Printf("PLC disconnected (%s)", remote)
		state.SetStatus(fmt.Sprintf("PLC disconnected, waiting on %s...", listenAddr))
		state.EventChan <- eventlog.Event{
			Timestamp: time.Now(), Level: "warn", Category: "feed",
			Message: "PLC disconnected", Details: remote,
		}
	}
}

func runSerialFeed(ctx context.Context, state *display.SignState, logger *log.Logger, portName string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		state.SetStatus(fmt.Sprintf("Opening serial port %s...", portName))
		serialMode := &serial.Mode{BaudRate: 115200, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}
		port, err := serial.Open(portName, serialMode)
		if err != nil {
			logger.Printf("Serial open failed: %v. Retrying.", err)
			state.SetStatus(fmt.Sprintf("Serial open failed: %v", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		port.SetReadTimeout(time.Second)
		logger.Printf("Serial port %s open", portName)
		state.SetStatus(fmt.Sprintf("Reading feed from %s", portName))

		readPackets(ctx, port, state, logger)
		port.Close()
	}
}

// readPackets runs the reassembly loop over one stream. TCP delivers the
// fixed-size packets as arbitrary fragments, so bytes accumulate until a
// whole packet is available; anything beyond a full packet stays buffered
// for the next one.
func readPackets(ctx context.Context, r io.Reader, state *display.SignState, logger *log.Logger) {
	var accumulated []byte
	buffer := make([]byte, PacketSize)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := r.Read(buffer)
		if n > 0 {
			accumulated = append(accumulated, buffer[:n]...)
			if len(accumulated) > maxAccumulated {
				logger.Printf("ERROR: Feed buffer overflow (%d bytes), dropping stream state", len(accumulated))
				accumulated = accumulated[:0]
				continue
			}
			for len(accumulated) >= PacketSize {
				packet := accumulated[:PacketSize]
				snap, perr := ParsePacket(packet)
				if perr != nil {
					logger.Printf("ERROR: %v", perr)
				} else {
					rxTime := time.Now()
					state.ReplaceSnapshot(snap)
					state.UpdateRx(packet, rxTime)
				}
				accumulated = append(accumulated[:0], accumulated[PacketSize:]...)
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Printf("Feed read error: %v", err)
			}
			return
		}
		if n == 0 {
			// Serial read timeout with no data; keep the port open.
			continue
		}
	}
}
