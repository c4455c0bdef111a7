package system

import (
	"fmt"
	"log"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/ivlev/lyric2video/internal/particles"
)

const gib = 1 << 30

// InitResourceLimits raises the open file limit; parallel frame export
// keeps one file per worker open at a time.
func InitResourceLimits(workers int) {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	want := uint64(1024 + 4*workers)
	if rLimit.Cur >= want {
		return
	}
	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// ClassifyTier maps logical cores and total RAM onto a device tier
func ClassifyTier(cores int, totalRAM uint64) particles.Tier {
	switch {
	case cores <= 2 || totalRAM < 3*gib:
		return particles.Mobile
	case cores <= 4 || totalRAM < 6*gib:
		return particles.Tablet
	case cores >= 12 && totalRAM >= 16*gib:
		return particles.HighEnd
	default:
		return particles.Desktop
	}
}

// DetectTier inspects the host. When the host cannot be inspected it
// assumes a desktop.
func DetectTier() particles.Tier {
	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		log.Printf("[!] Не удалось определить число ядер: %v. Используется уровень desktop", err)
		return particles.Desktop
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Не удалось определить объем памяти: %v. Используется уровень desktop", err)
		return particles.Desktop
	}
	return ClassifyTier(cores, vm.Total)
}

// ResolveTier turns a tier flag into a tier. "auto" and "" detect the host;
// unknown names fall back to desktop with a warning.
func ResolveTier(name string) particles.Tier {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		return DetectTier()
	}
	tier, ok := particles.ParseTier(name)
	if !ok {
		log.Printf("[!] Неизвестный уровень устройства %q. Используется desktop", name)
	}
	return tier
}
