// Package preload writes per-interview data files consumed by the
// editor page. Serving the graph as a script file has measured faster
// than embedding large JSON inline in the HTML.
package preload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/pkg/fault"
)

// Filename returns the preload file name for an interview id.
func Filename(id int) string {
	return fmt.Sprintf("data_%d.js", id)
}

// Render serializes the node map as a loadable script fragment:
// a data() function returning the graph object.
func Render(data models.NodeMap) ([]byte, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(encoded)+32)
	out = append(out, "function data(){return"...)
	out = append(out, encoded...)
	out = append(out, "};"...)
	return out, nil
}

// Write renders the interview graph into dir/data_<id>.js and returns
// the file name.
func Write(dir string, id int, data models.NodeMap) (string, error) {
	rendered, err := Render(data)
	if err != nil {
		return "", fault.NewInternalError("encoding preload data", err)
	}

	if err := os.MkdirAll(dir, 0o777); err != nil {
		return "", fault.FileSystem("creating preload directory", err)
	}

	name := Filename(id)
	if err := os.WriteFile(filepath.Join(dir, name), rendered, 0o644); err != nil {
		return "", fault.FileSystem("writing preload file", err)
	}

	return name, nil
}
