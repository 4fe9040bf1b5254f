package proto

const (
	// RootMountID is the well known id of the root mount point.
	RootMountID = MountID(1)

	// InvalidMountID is never assigned by the master.
	InvalidMountID = MountID(0)
)

type MountID = uint64
