package schema

import (
	"fmt"
	"strings"
)

// TargetID identifies one firmware build target.
type TargetID string

// All firmware build targets tracked by fwchore.
const (
	RS9116A10ROM TargetID = "9116-a10-rom"
	RS9116A10    TargetID = "9116-a10"
	RS9116A11ROM TargetID = "9116-a11-rom"
	RS9116A11    TargetID = "9116-a11"
	RS9116A11ANT TargetID = "9116-a11-ant"
	RS9117A0ROM  TargetID = "9117-a0-rom"
	RS9117A0     TargetID = "9117-a0"
	RS9117B0ROM  TargetID = "9117-b0-rom"
	RS9117B0     TargetID = "9117-b0"
	RS9117A0Tiny TargetID = "9117-a0-tiny"
)

// Target is one firmware build target with its own options, paths and CLI
// aliases. All paths are relative to the repository root.
type Target struct {
	ID      TargetID
	Name    string   // display name, e.g. "9117 A0"
	ROM     bool     // ROM-content check rather than a flash build
	Options []string // build-tool options passed through verbatim
	// InvocDir is the working directory the build tool is invoked from.
	InvocDir string
	// ReleaseDir holds the flash image after a successful build.
	ReleaseDir string
	// GeneratedFiles are tracked files the build rewrites as a side effect
	// (linker scripts, conversion scripts, boot descriptors). They are
	// restored to their committed state after every build.
	GeneratedFiles []string
	// GoldenROM is the committed ROM content to compare against, ROM targets only.
	GoldenROM string
	// Aliases are the CLI spellings that select this target.
	Aliases []string
}

// Validate checks the structural invariants of a target definition.
func (t Target) Validate() error {
	if t.ID == "" || t.Name == "" {
		return fmt.Errorf("target must have an id and a name")
	}
	if len(t.Options) == 0 {
		return fmt.Errorf("target %s: no build options", t.ID)
	}
	if t.InvocDir == "" {
		return fmt.Errorf("target %s: no invocation directory", t.ID)
	}
	if t.ROM && t.GoldenROM == "" {
		return fmt.Errorf("target %s: ROM target without a golden ROM path", t.ID)
	}
	if !t.ROM && t.ReleaseDir == "" {
		return fmt.Errorf("target %s: flash target without a release directory", t.ID)
	}
	return nil
}

// Firmware tree layout shared by every target.
const (
	coexDir    = "LMAC/ebuild/coex"
	releaseDir = "LMAC/erelease"
)

// targets is the registry of every known build target. The metadata mirrors
// the firmware tree: per-chip linker scripts, object-conversion scripts and
// boot descriptors that the build regenerates in place.
var targets = []Target{
	{
		ID:        RS9116A10ROM,
		Name:      "9116 1.4 ROM",
		ROM:       true,
		Options:   []string{"chip=9118", "rom"},
		InvocDir:  coexDir,
		GoldenROM: "LMAC/ROM_Binaries/rom_content_TA.mem",
		Aliases:   []string{"14R", "9116R", "a10r", "A10R", "A10ROM"},
	},
	{
		ID:         RS9116A10,
		Name:       "9116 1.4",
		Options:    []string{"chip=9118"},
		InvocDir:   coexDir,
		ReleaseDir: releaseDir,
		GeneratedFiles: []string{
			coexDir + "/linker_script_icache_qspi_all_coex_9118_wc.x",
			coexDir + "/convobj_coex_qspi_threadx_9118.sh",
			"LMAC/ebuild/wlan/boot_desc.c",
		},
		Aliases: []string{"4", "6", "14", "9116", "A10"},
	},
	{
		ID:        RS9116A11ROM,
		Name:      "9116 1.5 ROM",
		ROM:       true,
		Options:   []string{"chip=9118", "rev=2", "rom"},
		InvocDir:  coexDir,
		GoldenROM: "LMAC/ROM2_Binaries/rom_content_TA.mem",
		Aliases:   []string{"15R", "91162R", "a11r", "A11R", "A11ROM"},
	},
	{
		ID:         RS9116A11,
		Name:       "9116 1.5",
		Options:    []string{"chip=9118", "rev=2"},
		InvocDir:   coexDir,
		ReleaseDir: releaseDir,
		GeneratedFiles: []string{
			coexDir + "/linker_script_icache_qspi_all_coex_9118_wc_rom2.x",
			coexDir + "/convobj_coex_qspi_threadx_9118_rom2.sh",
			"LMAC/ebuild/wlan/boot_desc_rom2.c",
		},
		Aliases: []string{"5", "15", "91162", "A11"},
	},
	{
		ID:         RS9116A11ANT,
		Name:       "9116 1.5 Garmin",
		Options:    []string{"chip=9118", "rev=2", "ant=1"},
		InvocDir:   coexDir,
		ReleaseDir: releaseDir,
		GeneratedFiles: []string{
			coexDir + "/linker_script_icache_qspi_all_coex_9118_wc_rom2_ant.x",
			coexDir + "/convobj_coex_qspi_threadx_9118_ant_rom2.sh",
			"LMAC/ebuild/wlan/boot_desc_rom2.c",
			"ant_stack/ant_vnd_bin",
		},
		Aliases: []string{"ant", "garmin"},
	},
	{
		ID:        RS9117A0ROM,
		Name:      "9117 A0 ROM",
		ROM:       true,
		Options:   []string{"chip=9117", "rom"},
		InvocDir:  coexDir,
		GoldenROM: "LMAC/Si9117A0_ROM_Binaries/rom_content_TA.mem",
		Aliases:   []string{"A0R", "9117A0R", "a0r", "a0rom", "A0ROM"},
	},
	{
		ID:         RS9117A0,
		Name:       "9117 A0",
		Options:    []string{"chip=9117"},
		InvocDir:   coexDir,
		ReleaseDir: releaseDir,
		GeneratedFiles: []string{
			"LMAC/common/chip_dep/RS9117/cpu/linker_script_icache_qspi_all_coex_9117_wc_rom2.x",
			"LMAC/common/chip_dep/RS9117/cpu/convobj_coex_qspi_threadx_9117_rom2.sh",
			"LMAC/common/chip_dep/RS9117/cpu/boot_desc_9117_rom2.c",
		},
		Aliases: []string{"7", "A", "17", "9117", "A0", "a0"},
	},
	{
		ID:        RS9117B0ROM,
		Name:      "9117 B0 ROM",
		ROM:       true,
		Options:   []string{"chip=9117", "rom_version=B0", "rom"},
		InvocDir:  coexDir,
		GoldenROM: "LMAC/Si9117B0_ROM_Binaries/rom_content_TA.mem",
		Aliases:   []string{"B0R", "9117B0R", "b0r", "b0rom", "B0ROM"},
	},
	{
		ID:         RS9117B0,
		Name:       "9117 B0",
		Options:    []string{"chip=9117", "rom_version=B0"},
		InvocDir:   coexDir,
		ReleaseDir: releaseDir,
		GeneratedFiles: []string{
			"LMAC/common/chip_dep/9117B0/cpu/linker_script_icache_qspi_all_coex_9117_wc_rom2.x",
			"LMAC/common/chip_dep/9117B0/cpu/convobj_coex_qspi_threadx_9117_rom2.sh",
			"LMAC/common/chip_dep/9117B0/cpu/boot_desc_9117_rom2.c",
		},
		Aliases: []string{"B", "B0", "17B0", "9117B0", "b0", "9"},
	},
	{
		ID:         RS9117A0Tiny,
		Name:       "9117 A0 Tiny",
		Options:    []string{"chip=9117", "sta_alone=1"},
		InvocDir:   coexDir,
		ReleaseDir: releaseDir,
		GeneratedFiles: []string{
			"LMAC/common/chip_dep/RS9117/cpu/linker_script_icache_qspi_all_coex_9117_wc_rom2_sta_alone.x",
			"LMAC/common/chip_dep/RS9117/cpu/convobj_coex_qspi_threadx_9117_rom2_sta_alone.sh",
			"LMAC/common/chip_dep/RS9117/cpu/boot_desc_9117_rom2_sta_alone.c",
		},
		Aliases: []string{"A0T", "A0SA", "a0t", "a0sa"},
	},
}

// Targets returns the full target registry after validating every entry.
func Targets() ([]Target, error) {
	for _, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	out := make([]Target, len(targets))
	copy(out, targets)
	return out, nil
}

// TargetByID looks up a target by its identifier.
func TargetByID(id TargetID) (Target, bool) {
	for _, t := range targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// TargetByAlias resolves a CLI spelling (alias or exact ID) to a target.
// Alias matching is case-sensitive because several aliases differ only in case.
func TargetByAlias(s string) (Target, bool) {
	if t, ok := TargetByID(TargetID(s)); ok {
		return t, true
	}
	for _, t := range targets {
		for _, a := range t.Aliases {
			if a == s {
				return t, true
			}
		}
	}
	return Target{}, false
}

// WarningChipTarget maps the chip spellings accepted by the warnings command
// to the flash target whose build is compared.
func WarningChipTarget(chip string) (Target, bool) {
	switch strings.ToUpper(chip) {
	case "9117", "7", "A0", "A":
		return TargetByID(RS9117A0)
	case "B", "B0":
		return TargetByID(RS9117B0)
	case "6", "4", "9116":
		return TargetByID(RS9116A10)
	}
	return Target{}, false
}
