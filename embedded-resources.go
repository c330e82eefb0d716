package main

import (
	"embed"
	"io/fs"
	"path"
	"path/filepath"
)

// Bundled runtime data: sql migrations, sound effects, and the banner.
//
//go:embed assets/*
var gameAssets embed.FS

// assetPath maps a logical asset name to its location inside the
// bundle. embed.FS wants forward slashes regardless of platform.
func assetPath(name string) string {
	return path.Join("assets", filepath.ToSlash(name))
}

func readAsset(name string) ([]byte, error) {
	return gameAssets.ReadFile(assetPath(name))
}

func listAssetDir(name string) ([]fs.DirEntry, error) {
	return gameAssets.ReadDir(assetPath(name))
}
