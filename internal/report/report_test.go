package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rv64isim/rv64i-sim/internal/cpu"
	"github.com/rv64isim/rv64i-sim/internal/report"
)

func TestCaptureAndWriteText(t *testing.T) {
	img := []byte{0x93, 0x0f, 0xa0, 0x02} // ADDI x31, x0, 42, little-endian
	c := cpu.New(img, nil)
	steps := c.Run(0)

	snap := report.Capture(c, steps)
	if snap.Registers[31].Value != 42 {
		t.Fatalf("x31: got %d want 42", snap.Registers[31].Value)
	}
	if snap.Registers[31].Name != "t6" {
		t.Fatalf("name: got %q want t6", snap.Registers[31].Name)
	}

	var buf bytes.Buffer
	if err := report.WriteText(&buf, snap); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "x[31]/t6") {
		t.Fatalf("output missing x31 line: %q", buf.String())
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	img := []byte{0x93, 0x0f, 0xa0, 0x02}
	c := cpu.New(img, nil)
	steps := c.Run(0)
	snap := report.Capture(c, steps)

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, snap); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var decoded report.Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.PC != snap.PC {
		t.Fatalf("pc: got %d want %d", decoded.PC, snap.PC)
	}
}
