package storage

import "github.com/pkg/errors"

// ErrTransactionDoesNotExist is returned by Get and Delete when no vertex is
// stored under the requested hash.
var ErrTransactionDoesNotExist = errors.New("storage: transaction does not exist")

// ErrGenesisImmutable is returned when a caller attempts to Put or Delete a
// genesis vertex: genesis is resident in memory and never touches disk.
var ErrGenesisImmutable = errors.New("storage: genesis vertices are resident and cannot be written")
