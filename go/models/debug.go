package models

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os/exec"
	"regexp"
	"strings"
)

var demangleRe = regexp.MustCompile(`^[^(]+`)
var demangleCache = make(map[string]string)

// Demangle runs C++ names through c++filt. Anything else, or any failure,
// returns the name unchanged.
func Demangle(name string) string {
	raw := name
	if strings.HasPrefix(name, "__Z") {
		name = name[1:]
	} else if !strings.HasPrefix(name, "_Z") {
		return name
	}
	if cached, ok := demangleCache[raw]; ok {
		return cached
	}
	cmd := exec.Command("c++filt", "-n")
	cmd.Stdin = strings.NewReader(name + "\n")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return raw
	}
	if err = cmd.Start(); err != nil {
		return raw
	}
	out, err := ioutil.ReadAll(stdout)
	cmd.Wait()
	out = bytes.Trim(out, "\t\r\n ")
	if err != nil || len(out) == 0 {
		return raw
	}
	ret := string(demangleRe.Find(out))
	demangleCache[raw] = ret
	return ret
}

// HexDump renders mem as 32-bit words with an ASCII column.
func HexDump(base uint64, mem []byte) []string {
	const word = 4
	const perLine = 4
	clean := func(p []byte) string {
		o := make([]byte, len(p))
		for i, c := range p {
			if c >= 0x20 && c <= 0x7e {
				o[i] = c
			} else {
				o[i] = '.'
			}
		}
		return string(o)
	}
	var out []string
	for i := 0; i < len(mem); i += word * perLine {
		end := i + word*perLine
		if end > len(mem) {
			end = len(mem)
		}
		line := mem[i:end]
		blocks := make([]string, perLine)
		for j := range blocks {
			lo, hi := j*word, (j+1)*word
			switch {
			case lo >= len(line):
				blocks[j] = strings.Repeat(" ", word*2)
			case hi > len(line):
				blocks[j] = hex.EncodeToString(line[lo:]) + strings.Repeat("  ", hi-len(line))
			default:
				blocks[j] = hex.EncodeToString(line[lo:hi])
			}
		}
		out = append(out, fmt.Sprintf("0x%08x: %s [%s]", base+uint64(i), strings.Join(blocks, " "), clean(line)))
	}
	return out
}
