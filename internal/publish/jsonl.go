package publish

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"txstream/internal/stream"
)

// PayloadLine is one published payload as stored on disk. The payload bytes
// are base64 in the JSON form.
type PayloadLine struct {
	Topic   string `json:"topic"`
	Payload []byte `json:"payload"`
}

// JSONLPublisher appends payloads to a JSONL file. It stands in for the
// stream during offline replay and inspection.
type JSONLPublisher struct {
	path string

	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func NewJSONLPublisher(path string) *JSONLPublisher {
	return &JSONLPublisher{path: path}
}

// Publish appends one payload line.
func (p *JSONLPublisher) Publish(ctx context.Context, topic stream.Topic, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		if err := p.open(); err != nil {
			return err
		}
	}

	line, err := json.Marshal(PayloadLine{Topic: topic.String(), Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal payload line: %w", err)
	}
	if _, err := p.writer.Write(line); err != nil {
		return fmt.Errorf("write payload line: %w", err)
	}
	if err := p.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	return nil
}

// Close flushes and closes the output file.
func (p *JSONLPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return nil
	}
	if err := p.writer.Flush(); err != nil {
		p.file.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	p.file = nil
	p.writer = nil
	return nil
}

func (p *JSONLPublisher) open() error {
	dir := filepath.Dir(p.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	p.file = file
	p.writer = bufio.NewWriter(file)
	return nil
}
