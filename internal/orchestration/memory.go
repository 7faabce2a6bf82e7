package orchestration

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/agbru/matcalc/internal/config"
	"github.com/agbru/matcalc/internal/matrix"
)

// CheckMemory reports matrix.ErrScratchExhausted when the two operands and
// one product per calculator would not fit in memory. The budget is
// cfg.ScratchLimit when set, otherwise the physical memory of the machine.
// An unknown physical memory size disables the check.
func CheckMemory(cfg config.AppConfig, calculators int) error {
	return checkMemory(cfg.N, calculators, cfg.ScratchLimit, systemMemory())
}

func checkMemory(n, calculators int, limit int64, physical uint64) error {
	budget, source := uint64(limit), "scratch limit"
	if limit <= 0 {
		budget, source = physical, "physical memory"
	}
	if budget == 0 {
		return nil
	}
	need := matrix.DenseBytes[float32](n, 2+calculators)
	if uint64(need) > budget {
		return fmt.Errorf("%w: %dx%d inputs and %d products need %s, %s is %s",
			matrix.ErrScratchExhausted, n, n, calculators,
			humanize.IBytes(uint64(need)), source, humanize.IBytes(budget))
	}
	return nil
}
