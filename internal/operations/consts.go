package operations

// Defaults and sentinels spec.md §4.I names by their Slurm macro names
// rather than bare numbers, mirroring how the reference source threads
// SIGKILL/FULL_JOB_FLAG through the same handlers.
const (
	defaultKillSignal int64 = 9 // SIGKILL
	fullJobFlag       int64 = 1 // FULL_JOB: signal/cancel every component, not just the invoking step

	nobodyUID int64 = 65534 // the "nobody" account's uid on the reference platform
	nobodyGID int64 = 65534

	maxHetJobComponents = 128
)
