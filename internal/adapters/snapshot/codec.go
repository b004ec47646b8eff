// Package snapshot stores game states as zstd-compressed JSON files.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

// Header is written as the first line of every snapshot so saves can be
// listed without decoding the whole state
type Header struct {
	Version   int       `json:"version"`
	Slot      string    `json:"slot"`
	SavedAt   time.Time `json:"saved_at"`
	ClockTime time.Time `json:"clock_time"`
}

// BodyValidator checks the JSON state body before it is decoded
type BodyValidator interface {
	Validate(data []byte) error
}

// Encode writes header and state as compressed JSON lines
func Encode(w io.Writer, slot string, state *game.GameState) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	bw := bufio.NewWriterSize(enc, 64*1024)
	hb, err := json.Marshal(Header{
		Version:   state.Version,
		Slot:      slot,
		SavedAt:   state.SavedAt,
		ClockTime: state.ClockTime,
	})
	if err != nil {
		enc.Close()
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		enc.Close()
		return err
	}
	if err := json.NewEncoder(bw).Encode(state); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader decodes only the header line
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return h, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return h, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("failed to decode header: %w", err)
	}
	return h, nil
}

// Decode reads a snapshot written by Encode. The validator may be nil.
func Decode(r io.Reader, validator BodyValidator) (Header, *game.GameState, error) {
	var h Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return h, nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, nil, fmt.Errorf("failed to decode header: %w", err)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return h, nil, fmt.Errorf("failed to read state: %w", err)
	}
	body = bytes.TrimSpace(body)
	if validator != nil {
		if err := validator.Validate(body); err != nil {
			return h, nil, err
		}
	}

	var state game.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		return h, nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return h, &state, nil
}
