package dynamixel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kyoto-u-shinobi/dynamixel-servo/transports"
)

// DefaultBaudRate is the factory rate of the MX-28 family; AX-12
// deployments configure the rate explicitly.
const DefaultBaudRate = 1000000

// defaultSettleDelay is how long the line needs after the last
// transmitted byte before the servo's reply can start, matching the
// turnaround the legacy drivers waited.
const defaultSettleDelay = 20 * time.Microsecond

// Bus sequences instruction/status round trips on one servo chain.
// At most one round trip is in flight at a time; concurrent callers
// serialize on an internal mutex.
type Bus struct {
	transport Transport
	timeout   time.Duration
	settle    time.Duration
	strict    bool
	log       *zap.Logger

	mu     sync.Mutex
	closed bool
}

// BusConfig holds configuration for creating a new Bus.
type BusConfig struct {
	// Transport is the underlying link. If nil, Port must name a
	// serial device to open.
	Transport Transport

	// Port is the serial device path (e.g. "/dev/ttyUSB0"); ignored
	// when Transport is set.
	Port string

	// BaudRate defaults to 1000000 and must match the servos'
	// configured rate.
	BaudRate int

	// Timeout bounds one status reply. Default 1 second.
	Timeout time.Duration

	// SettleDelay is the transmit-to-receive turnaround. Default 20us.
	SettleDelay time.Duration

	// Strict enables header/length/checksum validation of status
	// replies. The default is the lenient legacy behavior: corrupt
	// replies are accepted and their error byte returned as-is.
	Strict bool

	// Logger receives packet-level debug logs; nil disables.
	Logger *zap.Logger
}

// NewBus creates a bus over the configured transport or serial port.
func NewBus(cfg BusConfig) (*Bus, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	transport := cfg.Transport
	if transport == nil {
		if cfg.Port == "" {
			return nil, errors.New("either Transport or Port must be specified")
		}
		var err error
		transport, err = transports.OpenSerial(transports.SerialConfig{
			Port:     cfg.Port,
			BaudRate: cfg.BaudRate,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open serial port: %w", err)
		}
	}

	return &Bus{
		transport: transport,
		timeout:   cfg.Timeout,
		settle:    cfg.SettleDelay,
		strict:    cfg.Strict,
		log:       cfg.Logger,
	}, nil
}

// Close closes the bus and its transport.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	return b.transport.Close()
}

// Ping verifies that the servo with the given ID answers on the bus.
func (b *Bus) Ping(ctx context.Context, id int) error {
	if err := validateID(id); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	packet, err := PingPacket(byte(id))
	if err != nil {
		return err
	}
	if err := b.sendPacketLocked("ping", packet); err != nil {
		return &CommError{Op: "ping", Err: err}
	}

	resp, err := b.readStatusLocked(ctx, 0)
	if err != nil {
		return &ServoError{ID: id, Op: "ping", Err: err}
	}
	if resp.Error.HasError() {
		return &ServoError{ID: id, Op: "ping", Status: resp.Error}
	}

	return nil
}

// ReadRegister reads length bytes starting at addr from one servo.
// Broadcast reads are rejected: with every servo answering at once
// there is no meaningful reply.
func (b *Bus) ReadRegister(ctx context.Context, id int, addr byte, length int) ([]byte, error) {
	if id == BroadcastID {
		return nil, ErrBroadcastRead
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	return b.readRegisterLocked(ctx, byte(id), addr, byte(length))
}

// WriteRegister writes data to the servo's control table at addr.
// A broadcast write is transmitted and immediately reported as
// success: no servo replies to broadcast, so no confirmation exists.
func (b *Bus) WriteRegister(ctx context.Context, id int, addr byte, data []byte) error {
	return b.write(ctx, "write", id, addr, data, false)
}

// RegWrite stages data in the servo's buffer; the value takes effect
// only when Action broadcasts the trigger.
func (b *Bus) RegWrite(ctx context.Context, id int, addr byte, data []byte) error {
	return b.write(ctx, "reg_write", id, addr, data, true)
}

func (b *Bus) write(ctx context.Context, op string, id int, addr byte, data []byte, staged bool) error {
	if id != BroadcastID {
		if err := validateID(id); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	var packet []byte
	var err error
	if staged {
		packet, err = RegWritePacket(byte(id), addr, data)
	} else {
		packet, err = WritePacket(byte(id), addr, data)
	}
	if err != nil {
		return err
	}

	if err := b.sendPacketLocked(op, packet); err != nil {
		return &CommError{Op: op, Err: err}
	}

	if id == BroadcastID {
		return nil
	}

	resp, err := b.readStatusLocked(ctx, 0)
	if err != nil {
		return &ServoError{ID: id, Op: op, Err: err}
	}
	if resp.Error.HasError() {
		return &ServoError{ID: id, Op: op, Status: resp.Error}
	}

	return nil
}

// Action broadcasts the trigger that applies every staged RegWrite on
// the chain simultaneously. No reply follows a broadcast.
func (b *Bus) Action(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	packet, err := ActionPacket()
	if err != nil {
		return err
	}
	if err := b.sendPacketLocked("action", packet); err != nil {
		return &CommError{Op: "action", Err: err}
	}

	return nil
}

// Reset factory-resets one servo. The servo comes back with ID 1 and
// its default baud rate, so the caller must re-address it afterwards.
func (b *Bus) Reset(ctx context.Context, id int) error {
	if err := validateID(id); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	packet, err := ResetPacket(byte(id))
	if err != nil {
		return err
	}
	if err := b.sendPacketLocked("reset", packet); err != nil {
		return &CommError{Op: "reset", Err: err}
	}

	resp, err := b.readStatusLocked(ctx, 0)
	if err != nil {
		return &ServoError{ID: id, Op: "reset", Err: err}
	}
	if resp.Error.HasError() {
		return &ServoError{ID: id, Op: "reset", Status: resp.Error}
	}

	return nil
}

// SyncWrite writes the same register span on several servos in one
// broadcast frame. data maps servo ID to exactly dataLen bytes.
func (b *Bus) SyncWrite(ctx context.Context, addr byte, dataLen int, data map[int][]byte) error {
	byteData := make(map[byte][]byte, len(data))
	for id, d := range data {
		if err := validateID(id); err != nil {
			return err
		}
		if len(d) != dataLen {
			return fmt.Errorf("servo %d: data length mismatch: expected %d, got %d", id, dataLen, len(d))
		}
		byteData[byte(id)] = d
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}

	packet, err := SyncWritePacket(addr, byte(dataLen), byteData)
	if err != nil {
		return err
	}
	if err := b.sendPacketLocked("sync_write", packet); err != nil {
		return &CommError{Op: "sync_write", Err: err}
	}

	// Broadcast, no reply.
	return nil
}

// ChangeID rewrites a servo's bus ID. currentID may be the broadcast
// address when the servo's ID is unknown, but only with a single servo
// attached: broadcast reaches every servo on the chain and would
// reassign them all identically. That discipline is on the caller.
func (b *Bus) ChangeID(ctx context.Context, currentID, newID int) error {
	if err := validateID(newID); err != nil {
		return err
	}
	return b.write(ctx, "change_id", currentID, RegID.Address, []byte{byte(newID)}, false)
}

// FoundServo describes one servo discovered by Scan.
type FoundServo struct {
	ID          int
	ModelNumber int
}

// Scan pings every ID in [startID, endID] and reads the model number
// of each responder. Non-responding IDs are skipped silently.
func (b *Bus) Scan(ctx context.Context, startID, endID int) ([]FoundServo, error) {
	if startID < 0 || endID > MaxServoID || startID > endID {
		return nil, fmt.Errorf("invalid ID range: %d to %d", startID, endID)
	}

	var found []FoundServo
	for id := startID; id <= endID; id++ {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}

		if err := b.Ping(ctx, id); err != nil {
			continue
		}

		f := FoundServo{ID: id}
		if data, err := b.ReadRegister(ctx, id, RegModelNumber.Address, RegModelNumber.Size); err == nil {
			f.ModelNumber = int(DecodeWord(data))
		}
		found = append(found, f)
	}

	return found, nil
}

// Internal methods

func validateID(id int) error {
	if id < 0 || id > MaxServoID {
		return fmt.Errorf("%w: %d (valid range: 0-%d)", ErrInvalidID, id, MaxServoID)
	}
	return nil
}

func (b *Bus) sendPacketLocked(op string, packet []byte) error {
	// Drop anything still sitting in the receive buffer, including
	// our own echoed bytes from a previous exchange.
	b.transport.Flush()

	n, err := b.transport.Write(packet)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(packet) {
		return fmt.Errorf("incomplete write: %d of %d bytes", n, len(packet))
	}

	b.log.Debug("instruction sent",
		zap.String("op", op),
		zap.Int("id", int(packet[2])),
		zap.String("frame", fmt.Sprintf("% X", packet)),
	)

	// Let the line turn around before listening for the reply.
	time.Sleep(b.settle)

	return nil
}

func (b *Bus) readRegisterLocked(ctx context.Context, id, addr, length byte) ([]byte, error) {
	packet, err := ReadPacket(id, addr, length)
	if err != nil {
		return nil, err
	}
	if err := b.sendPacketLocked("read", packet); err != nil {
		return nil, &CommError{Op: "read", Err: err}
	}

	resp, err := b.readStatusLocked(ctx, int(length))
	if err != nil {
		return nil, &ServoError{ID: int(id), Op: "read", Err: err}
	}
	if resp.Error.HasError() {
		return nil, &ServoError{ID: int(id), Op: "read", Status: resp.Error}
	}

	return resp.Params, nil
}

func (b *Bus) readStatusLocked(ctx context.Context, paramCount int) (Packet, error) {
	data, err := b.readRawBytesLocked(ctx, StatusLength(paramCount))
	if err != nil {
		return Packet{}, err
	}

	var pkt Packet
	if b.strict {
		pkt, err = DecodeStatusStrict(data)
	} else {
		pkt, err = DecodeStatus(data)
	}
	if err != nil {
		return Packet{}, err
	}

	b.log.Debug("status received",
		zap.Int("id", int(pkt.ID)),
		zap.Uint8("error", uint8(pkt.Error)),
		zap.String("frame", fmt.Sprintf("% X", data)),
	)

	return pkt, nil
}

func (b *Bus) readRawBytesLocked(ctx context.Context, expectedLen int) ([]byte, error) {
	buffer := make([]byte, expectedLen)
	totalRead := 0
	deadline := time.Now().Add(b.timeout)

	for totalRead < expectedLen {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if time.Now().After(deadline) {
			if totalRead == 0 {
				return nil, ErrNoResponse
			}
			return nil, fmt.Errorf("%w: read %d of %d expected bytes", ErrTimeout, totalRead, expectedLen)
		}

		remaining := max(time.Until(deadline), 10*time.Millisecond)
		b.transport.SetReadTimeout(remaining)

		n, err := b.transport.Read(buffer[totalRead:])
		if err != nil {
			if n == 0 {
				// Timed-out read; loop until the bus deadline decides.
				time.Sleep(time.Millisecond)
				continue
			}
			return nil, fmt.Errorf("read error: %w", err)
		}

		totalRead += n
	}

	return buffer[:totalRead], nil
}
