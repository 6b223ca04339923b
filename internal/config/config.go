package config

const VERSION = "0.4.0"

// Config holds global application settings
type Config struct {
	Debug   bool
	Quiet   bool
	Version string

	// ConfigFile is the config file viper actually read ("" when none was found).
	ConfigFile string
}

// Global holds the singleton configuration instance
var Global = Config{Version: VERSION}

// Config keys read by the job builder.
const (
	KeySharedScratch       = "slurm.shared_scratch"
	KeyDefaultPartition    = "slurm.default_partition"
	KeyPartitions          = "slurm.partitions"
	KeyModules             = "abaqus.modules"
	KeyLicense             = "abaqus.license"
	KeyTemplatesDir        = "abaqus.templates_dir"
	KeySolveTemplate       = "abaqus.solve_template"
	KeyDistributedTemplate = "abaqus.solve_distributed_template"
	KeyEigenTemplate       = "abaqus.solve_eigenfrequency_template"
	KeyWorkernodeMem       = "abaqus.workernode_mem_default"
	KeyTasksPerNode        = "cluster.ntasks_per_node"
	KeyMaxNodes            = "cluster.max_nodes"
	KeyMaxCpus             = "cluster.max_cpus"
	KeyMaxTimeLimit        = "cluster.max_timelimit_minutes"
)

// Keys lists every known configuration key, in display order.
var Keys = []string{
	KeySharedScratch,
	KeyDefaultPartition,
	KeyPartitions,
	KeyModules,
	KeyLicense,
	KeyTemplatesDir,
	KeySolveTemplate,
	KeyDistributedTemplate,
	KeyEigenTemplate,
	KeyWorkernodeMem,
	KeyTasksPerNode,
	KeyMaxNodes,
	KeyMaxCpus,
	KeyMaxTimeLimit,
}
