// Package report formats the final architectural state of a run for
// human or machine consumption: the register file, PC, run state,
// step count, and the halt reason.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rv64isim/rv64i-sim/internal/cpu"
	"github.com/rv64isim/rv64i-sim/internal/regfile"
)

// RegisterEntry is one line of the register dump.
type RegisterEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Value uint64 `json:"value"`
}

// Snapshot captures the observable outcome of a run: the final
// register contents, PC, run state, and fault (if any).
type Snapshot struct {
	Registers []RegisterEntry `json:"registers"`
	PC        uint64          `json:"pc"`
	State     string          `json:"state"`
	Steps     uint64          `json:"steps"`
	Fault     string          `json:"fault,omitempty"`
}

// Capture builds a Snapshot from a CPU after Run has returned.
func Capture(c *cpu.CPU, steps uint64) Snapshot {
	snap := Snapshot{
		Registers: make([]RegisterEntry, 32),
		PC:        c.Reg.PC,
		State:     c.State().String(),
		Steps:     steps,
	}
	for i := 0; i < 32; i++ {
		snap.Registers[i] = RegisterEntry{
			Index: i,
			Name:  regfile.Name(uint32(i)),
			Value: c.Reg.Get(uint32(i)),
		}
	}
	if err := c.Err(); err != nil {
		snap.Fault = err.Error()
	}
	return snap
}

// WriteText prints the snapshot in the original dumpRegisters layout:
// one line per register, index and ABI name together, hex value.
func WriteText(w io.Writer, s Snapshot) error {
	for _, r := range s.Registers {
		if _, err := fmt.Fprintf(w, "x[%d]/%s  =  0x%x\n", r.Index, r.Name, r.Value); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\npc = 0x%x, state = %s, steps = %d\n", s.PC, s.State, s.Steps)
	if err != nil {
		return err
	}
	if s.Fault != "" {
		_, err = fmt.Fprintf(w, "fault: %s\n", s.Fault)
	}
	return err
}

// WriteJSON writes the snapshot as indented JSON.
func WriteJSON(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
