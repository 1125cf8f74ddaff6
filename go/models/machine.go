package models

import "fmt"

// Machine is the closed set of architectures the analysis pipeline knows.
type Machine int

const (
	MachineUnknown Machine = iota
	MachineSparc
	MachinePentium
	MachineHPRisc
	MachinePalm
	MachinePPC
	MachineST20
	MachineMIPS
)

var machineNames = map[Machine]string{
	MachineUnknown: "unknown",
	MachineSparc:   "sparc",
	MachinePentium: "pentium",
	MachineHPRisc:  "hppa",
	MachinePalm:    "palm",
	MachinePPC:     "ppc",
	MachineST20:    "st20",
	MachineMIPS:    "mips",
}

func (m Machine) String() string {
	if name, ok := machineNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Machine(%d)", int(m))
}
