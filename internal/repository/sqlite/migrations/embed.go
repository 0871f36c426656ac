package migrations

import (
	"embed"
	"io/fs"
)

//go:embed server/*.sql client/*.sql
var embedded embed.FS

// Server holds the schema of the task/auth service.
var Server = mustSub("server")

// Client holds the schema of the durable client storage.
var Client = mustSub("client")

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(embedded, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
