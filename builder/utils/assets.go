package utils

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
)

// BuildAssets copies the static tree from src into destDir/static. CSS and
// JS go through esbuild; with minify set they are minified and given a
// fingerprinted name. The returned map goes from "/static/<rel>" to the
// URL of the written file.
func BuildAssets(src fs.FS, destFs afero.Fs, destDir string, minify bool, onWrite func(string)) (map[string]string, error) {
	assets := make(map[string]string)

	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}

		out, name := data, p
		switch strings.ToLower(path.Ext(p)) {
		case ".css":
			out, err = transform(p, data, api.LoaderCSS, minify)
		case ".js":
			out, err = transform(p, data, api.LoaderJS, minify)
		}
		if err != nil {
			return err
		}
		if ext := path.Ext(p); minify && (ext == ".css" || ext == ".js") {
			name = strings.TrimSuffix(p, ext) + "." + Fingerprint(out) + ext
		}

		dest := path.Join(destDir, "static", name)
		if err := WriteFileVFS(destFs, dest, out); err != nil {
			return err
		}
		if onWrite != nil {
			onWrite(dest)
		}
		assets["/static/"+p] = "/static/" + name
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build assets: %w", err)
	}
	return assets, nil
}

func transform(name string, data []byte, loader api.Loader, minify bool) ([]byte, error) {
	result := api.Transform(string(data), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        name,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		Target:            api.ES2020,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		return nil, fmt.Errorf("esbuild %s: %s (%d errors)", name, msg.Text, len(result.Errors))
	}
	return result.Code, nil
}
