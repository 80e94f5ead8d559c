package sim

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"sign-tools/plc-go-sim/config"
)

// Command structs
type SetBitCmd struct {
	Word int
	Bit  uint
	Val  bool
}
type WriteWordCmd struct {
	Word  int
	Value uint16
}
type WriteRealCmd struct {
	Word  int
	Value float32
}

// Simulator emulates the PLC side of the sign feed: a fixed word image
// pushed to the controller at a steady cadence, with registers driven from
// the TUI or a scenario script.
type Simulator struct {
	mu           sync.Mutex
	datastore    []uint16
	log          *log.Logger
	CommandChan  chan interface{}
	shutdownChan chan struct{}
	txCount      uint64
	status       string
}

func NewSimulator(logger *log.Logger) *Simulator {
	return &Simulator{
		datastore:    make([]uint16, config.RegisterCount),
		log:          logger,
		CommandChan:  make(chan interface{}),
		shutdownChan: make(chan struct{}),
		status:       "Initializing...",
	}
}

// GetDatastoreSnapshot returns a copy of the full word image.
func (s *Simulator) GetDatastoreSnapshot() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]uint16, len(s.datastore))
	copy(snapshot, s.datastore)
	return snapshot
}

func (s *Simulator) TxCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

func (s *Simulator) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Simulator) setStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *Simulator) RunCommandProcessor() {
	s.log.Println("Command processor goroutine started.")
	for {
		select {
		case cmd := <-s.CommandChan:
			s.mu.Lock()
			switch c := cmd.(type) {
			case SetBitCmd:
				if c.Word >= 0 && c.Word < len(s.datastore) && c.Bit <= 15 {
					if c.Val {
						s.datastore[c.Word] |= (1 << c.Bit)
					} else {
						s.datastore[c.Word] &= ^uint16(1 << c.Bit)
					}
				}
			case WriteWordCmd:
				if c.Word >= 0 && c.Word < len(s.datastore) {
					s.datastore[c.Word] = c.Value
				}
			case WriteRealCmd:
				// IEEE 754 split across two consecutive words, high first.
				if c.Word >= 0 && c.Word+1 < len(s.datastore) {
					bits := math.Float32bits(c.Value)
					s.datastore[c.Word] = uint16(bits >> 16)
					s.datastore[c.Word+1] = uint16(bits & 0xFFFF)
				}
			}
			s.mu.Unlock()
		case <-s.shutdownChan:
			s.log.Println("Command processor shutting down.")
			return
		}
	}
}

// buildPacket serializes the word image as big-endian uint16s.
func (s *Simulator) buildPacket() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	packet := make([]byte, len(s.datastore)*2)
	for i, v := range s.datastore {
		binary.BigEndian.PutUint16(packet[i*2:], v)
	}
	return packet
}

// RunPush dials the controller and pushes the full image at the configured
// cadence, the way TSEND_C does from the real PLC. Reconnects forever.
func (s *Simulator) RunPush(target string) {
	s.log.Printf("Push goroutine started, target %s", target)
	for {
		select {
		case <-s.shutdownChan:
			s.log.Println("Push goroutine shutting down.")
			return
		default:
		}

		s.setStatus(fmt.Sprintf("Connecting to %s...", target))
		conn, err := net.DialTimeout("tcp", target, 5*time.Second)
		if err != nil {
			s.log.Printf("Connect failed: %v. Retrying.", err)
			s.setStatus(fmt.Sprintf("Connect failed: %v", err))
			select {
			case <-s.shutdownChan:
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		s.log.Printf("Connected to %s", target)
		s.setStatus(fmt.Sprintf("Pushing to %s", target))

		ticker := time.NewTicker(time.Duration(config.PushIntervalMs) * time.Millisecond)
		for {
			select {
			case <-s.shutdownChan:
				ticker.Stop()
				conn.Close()
				return
			case <-ticker.C:
				packet := s.buildPacket()
				if _, err := conn.Write(packet); err != nil {
					s.log.Printf("Push write error: %v. Reconnecting.", err)
					break
				}
				s.mu.Lock()
				s.txCount++
				s.mu.Unlock()
				continue
			}
			break
		}
		ticker.Stop()
		conn.Close()
		s.setStatus("Disconnected, reconnecting...")
	}
}

// RunScenario plays a register script: one command per line, # comments.
//
//	WAIT 2.5
//	SET 0 3
//	CLEAR 0 3
//	WORD 10 1234
//	REAL 20 3.14
//	RAMP 10 0 500 10
func (s *Simulator) RunScenario(filePath string) {
	s.log.Printf("SCENARIO: Starting script '%s'", filePath)
	file, err := os.Open(filePath)
	if err != nil {
		s.log.Printf("SCENARIO ERROR: Could not open file: %v", err)
		return
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		command := strings.ToUpper(parts[0])
		args := parts[1:]
		s.log.Printf("SCENARIO: Executing line %d: %s", lineNumber, line)
		switch command {
		case "WAIT":
			if len(args) < 1 {
				break
			}
			duration, _ := strconv.ParseFloat(args[0], 64)
			time.Sleep(time.Duration(duration * float64(time.Second)))
		case "SET", "CLEAR":
			if len(args) < 2 {
				s.log.Printf("SCENARIO WARNING: %s needs word and bit on line %d", command, lineNumber)
				break
			}
			word, _ := strconv.Atoi(args[0])
			bit, _ := strconv.ParseUint(args[1], 10, 8)
			s.CommandChan <- SetBitCmd{Word: word, Bit: uint(bit), Val: command == "SET"}
		case "WORD":
			if len(args) < 2 {
				break
			}
			word, _ := strconv.Atoi(args[0])
			val, _ := strconv.ParseUint(args[1], 10, 16)
			s.CommandChan <- WriteWordCmd{Word: word, Value: uint16(val)}
		case "REAL":
			if len(args) < 2 {
				break
			}
			word, _ := strconv.Atoi(args[0])
			val, _ := strconv.ParseFloat(args[1], 32)
			s.CommandChan <- WriteRealCmd{Word: word, Value: float32(val)}
		case "RAMP":
			if len(args) < 4 {
				break
			}
			word, _ := strconv.Atoi(args[0])
			startVal, _ := strconv.ParseFloat(args[1], 64)
			endVal, _ := strconv.ParseFloat(args[2], 64)
			duration, _ := strconv.ParseFloat(args[3], 64)
			steps := int(duration * 20)
			if steps == 0 {
				steps = 1
			}
			for i := 0; i <= steps; i++ {
				progress := float64(i) / float64(steps)
				currentVal := startVal + (endVal-startVal)*progress
				s.CommandChan <- WriteWordCmd{Word: word, Value: uint16(math.Round(currentVal))}
				time.Sleep(50 * time.Millisecond)
			}
		default:
			s.log.Printf("SCENARIO WARNING: Unknown command '%s' on line %d", command, lineNumber)
		}
		time.Sleep(100 * time.Millisecond)
	}
	s.log.Println("SCENARIO: Script finished.")
}

// RunModbusServer answers Modbus TCP (MBAP framed) reads against the word
// image, for controllers running in poll mode instead of taking the push.
func (s *Simulator) RunModbusServer(listenAddr string) {
	s.log.Printf("Starting Modbus TCP server on %s", listenAddr)
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		s.log.Printf("FATAL: Failed to start Modbus listener: %v", err)
		s.setStatus(fmt.Sprintf("Listen failed: %v", err))
		return
	}
	s.setStatus(fmt.Sprintf("Serving Modbus on %s", listenAddr))
	go func() {
		<-s.shutdownChan
		s.log.Println("Modbus listener shutting down.")
		listener.Close()
	}()
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdownChan:
				return
			default:
				if !errors.Is(err, net.ErrClosed) {
					s.log.Printf("Failed to accept connection: %v", err)
				}
			}
			continue
		}
		go s.handleModbusConnection(conn)
	}
}

func (s *Simulator) handleModbusConnection(conn net.Conn) {
	defer conn.Close()
	header := make([]byte, 7)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Printf("Modbus read error: %v", err)
			}
			return
		}
		length := binary.BigEndian.Uint16(header[4:6])
		if length < 2 || length > 260 {
			s.log.Printf("Malformed MBAP length %d", length)
			return
		}
		pdu := make([]byte, length-1)
		if _, err := io.ReadFull(conn, pdu); err != nil {
			s.log.Printf("Modbus read error: %v", err)
			return
		}

		response := s.processPDU(pdu)
		frame := make([]byte, 7+len(response))
		copy(frame[0:4], header[0:4]) // transaction + protocol IDs echo back
		binary.BigEndian.PutUint16(frame[4:6], uint16(len(response)+1))
		frame[6] = header[6] // unit ID
		copy(frame[7:], response)
		if _, err := conn.Write(frame); err != nil {
			s.log.Printf("Modbus write error: %v", err)
			return
		}
	}
}

func exceptionPDU(funcCode, code byte) []byte {
	return []byte{funcCode | 0x80, code}
}

func (s *Simulator) processPDU(pdu []byte) []byte {
	if len(pdu) < 1 {
		return nil
	}
	funcCode := pdu[0]
	switch funcCode {
	case 3, 4:
		if len(pdu) < 5 {
			return exceptionPDU(funcCode, 0x03)
		}
		addr := int(binary.BigEndian.Uint16(pdu[1:3]))
		count := int(binary.BigEndian.Uint16(pdu[3:5]))
		if count < 1 || count > 125 || addr+count > config.RegisterCount {
			return exceptionPDU(funcCode, 0x02)
		}
		s.mu.Lock()
		data := make([]byte, count*2)
		for i := 0; i < count; i++ {
			binary.BigEndian.PutUint16(data[i*2:], s.datastore[addr+i])
		}
		s.mu.Unlock()
		return append([]byte{funcCode, byte(count * 2)}, data...)
	case 6:
		if len(pdu) < 5 {
			return exceptionPDU(funcCode, 0x03)
		}
		addr := int(binary.BigEndian.Uint16(pdu[1:3]))
		value := binary.BigEndian.Uint16(pdu[3:5])
		if addr >= config.RegisterCount {
			return exceptionPDU(funcCode, 0x02)
		}
		s.CommandChan <- WriteWordCmd{Word: addr, Value: value}
		return pdu[:5]
	case 16:
		if len(pdu) < 6 {
			return exceptionPDU(funcCode, 0x03)
		}
		addr := int(binary.BigEndian.Uint16(pdu[1:3]))
		count := int(binary.BigEndian.Uint16(pdu[3:5]))
		byteCount := int(pdu[5])
		if len(pdu) < 6+byteCount || count*2 != byteCount || addr+count > config.RegisterCount {
			return exceptionPDU(funcCode, 0x03)
		}
		for i := 0; i < count; i++ {
			value := binary.BigEndian.Uint16(pdu[6+i*2:])
			s.CommandChan <- WriteWordCmd{Word: addr + i, Value: value}
		}
		return pdu[:5]
	default:
		s.log.Printf("Unsupported function code: %d", funcCode)
		return exceptionPDU(funcCode, 0x01)
	}
}

func (s *Simulator) Stop() {
	s.log.Println("Stopping simulator...")
	close(s.shutdownChan)
}
