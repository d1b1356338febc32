package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"txstream/internal/publish"
	"txstream/internal/txevents"
)

// decodedLine is the readable form of one published payload.
type decodedLine struct {
	Topic    string             `json:"topic"`
	Kind     string             `json:"kind"`
	Metadata txevents.Metadata  `json:"metadata"`
	Data     txevents.EventData `json:"data"`
}

func runDecode(cmd *cobra.Command, _ []string) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	level, _ := cmd.Flags().GetString("log-level")

	logger, err := newLogger(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if in == "" {
		return fmt.Errorf("input path is required")
	}
	if out == "" {
		return fmt.Errorf("output path is required")
	}

	inputFile, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	outputFile, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer outputFile.Close()

	writer := bufio.NewWriter(outputFile)
	scanner := bufio.NewScanner(inputFile)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var decoded, failed uint64
	for scanner.Scan() {
		var line publish.PayloadLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			return fmt.Errorf("parse payload line: %w", err)
		}

		payload, err := txevents.Decode(line.Payload)
		if err != nil {
			// Malformed payloads are reported and skipped, not fatal.
			failed++
			logger.Warn("skip undecodable payload", zap.String("topic", line.Topic), zap.Error(err))
			continue
		}

		outLine, err := json.Marshal(decodedLine{
			Topic:    line.Topic,
			Kind:     payload.Data.Topic().String(),
			Metadata: payload.Metadata,
			Data:     payload.Data,
		})
		if err != nil {
			return fmt.Errorf("marshal decoded line: %w", err)
		}
		if _, err := writer.Write(outLine); err != nil {
			return fmt.Errorf("write decoded line: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
		decoded++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	logger.Info("decode complete",
		zap.Uint64("decoded", decoded),
		zap.Uint64("failed", failed),
		zap.String("out", out))
	return nil
}
