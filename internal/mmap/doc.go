// Package mmap maps dataset files read-only into memory.
//
// Matrix files are parsed front to back, so mappings are advised for
// sequential access. On platforms without mmap support the file is read
// into memory instead; callers see the same API.
//
//	m, err := mmap.Open("X.csv")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
package mmap
