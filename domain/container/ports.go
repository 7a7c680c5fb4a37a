package container

import "context"

// Remuxer rewrites containers without re-encoding
// This is a port that can be implemented by different infrastructure adapters
type Remuxer interface {
	// Remux copies every stream of req.SourcePath into a new container at tmpPath
	Remux(ctx context.Context, req *RemuxRequest, tmpPath string) error
	// Repack rewrites req.SourcePath from req.Start into tmpPath
	Repack(ctx context.Context, req *RepackRequest, tmpPath string) error
}

// Prober reads container metadata
type Prober interface {
	Probe(ctx context.Context, path string) (*Info, error)
}

// FileChecker defines the interface for checking file existence
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// Stager hands out temporary output paths and promotes them once complete,
// so a failed write never leaves a file at the final path
type Stager interface {
	Stage(finalPath string) (string, error)
	Commit(tmpPath, finalPath string) error
	Discard(tmpPath string)
}
