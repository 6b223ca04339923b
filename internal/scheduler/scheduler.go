// Package scheduler holds the SLURM-facing helpers used when preparing a job:
// walltime formatting and cluster limit checks.
package scheduler

import (
	"os"
	"time"
)

// ResourceLimits holds scheduler resource limits. A zero field means unlimited.
type ResourceLimits struct {
	MaxNodes  int           // Maximum nodes per job
	MaxCpus   int           // Maximum CPUs per job
	MaxTime   time.Duration // Maximum walltime
	Partition string        // Partition/queue name these limits apply to (optional)
}

// JobShape is the part of a derived job that limits are checked against.
type JobShape struct {
	Nodes int
	Cpus  int
	Time  time.Duration
}

// ValidateSpecs validates a job shape against cluster limits
func ValidateSpecs(shape JobShape, limits *ResourceLimits) error {
	if limits == nil {
		return nil // No limits to validate against
	}

	if limits.MaxNodes > 0 && shape.Nodes > limits.MaxNodes {
		return &ValidationError{
			Field:     "Nodes",
			Requested: shape.Nodes,
			Limit:     limits.MaxNodes,
			Partition: limits.Partition,
		}
	}

	if limits.MaxCpus > 0 && shape.Cpus > limits.MaxCpus {
		return &ValidationError{
			Field:     "Cpus",
			Requested: shape.Cpus,
			Limit:     limits.MaxCpus,
			Partition: limits.Partition,
		}
	}

	if limits.MaxTime > 0 && shape.Time > limits.MaxTime {
		return &ValidationError{
			Field:     "TimeMinutes",
			Requested: int(shape.Time / time.Minute),
			Limit:     int(limits.MaxTime / time.Minute),
			Partition: limits.Partition,
		}
	}

	return nil
}

// IsInsideJob checks if we're currently running inside a scheduler job.
// Scripts generated inside an allocation are usually meant for sbatch on a
// login node, so callers only warn.
func IsInsideJob() bool {
	for _, key := range []string{"SLURM_JOB_ID", "PBS_JOBID", "LSB_JOBID"} {
		if _, ok := os.LookupEnv(key); ok {
			return true
		}
	}
	return false
}
