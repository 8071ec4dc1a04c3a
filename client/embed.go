// Package client embeds the browser script that drives live pages.
package client

import (
	"embed"
	"io/fs"
	"net/http"
)

// ScriptName is the file name of the live client script.
const ScriptName = "hammeet.js"

//go:embed src/*.js
var assets embed.FS

// Assets returns the embedded script directory.
func Assets() fs.FS {
	fsys, err := fs.Sub(assets, "src")
	if err != nil {
		panic(err)
	}
	return fsys
}

// Handler serves the embedded scripts. Mount it under a prefix with
// http.StripPrefix.
func Handler() http.Handler {
	files := http.FileServer(http.FS(Assets()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

// Script returns the live client script.
func Script() []byte {
	data, err := assets.ReadFile("src/" + ScriptName)
	if err != nil {
		panic(err)
	}
	return data
}
