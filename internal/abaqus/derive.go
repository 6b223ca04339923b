package abaqus

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/jobbers/jobbers/internal/scheduler"
	"github.com/jobbers/jobbers/internal/utils"
)

const (
	// GPUMasternodeMemMiB is requested instead of a computed limit for GPU
	// jobs. No CPU-only node has 1 TiB, so SLURM places the job on a GPU node.
	GPUMasternodeMemMiB = 1048576

	// memHeadroom keeps requests below the RealMemory that `slurmd -C` reports.
	memHeadroom = 0.95

	// DefaultTasksPerNode is used when cluster.ntasks_per_node is not configured.
	DefaultTasksPerNode = 36

	// GenericTemplate is the template name of the generic workflow.
	GenericTemplate = "abaqus-generic-template.tmpl"

	// maxMemoryMiB caps memory requests at 2 PiB.
	maxMemoryMiB = math.MaxInt32
)

// MiBFromGiB converts a memory request in GiB to the MiB value passed to
// SLURM: floor(gib * 1024 * 0.95).
func MiBFromGiB(gib float64) (int, error) {
	mib := math.Floor(gib * 1024 * memHeadroom)
	if mib > maxMemoryMiB {
		return 0, fmt.Errorf("%v GiB is above the largest request of %d MiB", gib, maxMemoryMiB)
	}
	return int(mib), nil
}

// parseMemoryGiB turns a memory answer into MiB.
func parseMemoryGiB(answer string) (int, error) {
	gib, err := utils.ParseSizeToGiB(answer)
	if err != nil {
		return 0, invalidAnswer("master node memory", answer, err)
	}
	mib, err := MiBFromGiB(gib)
	if err != nil {
		return 0, invalidAnswer("master node memory", answer, err)
	}
	return mib, nil
}

// parseTimeLimit turns a time limit answer into seconds. A bare number is
// minutes, so "90" becomes 5400.
func parseTimeLimit(answer string) (int, error) {
	d, err := scheduler.ParseTime(answer)
	if err != nil {
		return 0, invalidAnswer("time limit", answer, err)
	}
	return int(d.Seconds()), nil
}

// ResolveTemplate returns override verbatim when set; otherwise name inside dir.
// An empty dir leaves the bare name, which the renderer finds among the
// packaged templates.
func ResolveTemplate(override, dir, name string) string {
	if override != "" {
		return override
	}
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// restartJobName strips directory and extension from a restart file.
func restartJobName(restartFile string) string {
	return utils.Stem(restartFile)
}
