package preload

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DheerG/LogicPull/internal/models"
)

func TestRender_Wrapping(t *testing.T) {
	data := models.NodeMap{
		"q0": {QID: "q0", Name: "First Question"},
	}

	out, err := Render(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := string(out)
	if !strings.HasPrefix(s, "function data(){return{") {
		t.Errorf("unexpected prefix: %q", s[:30])
	}
	if !strings.HasSuffix(s, "};") {
		t.Errorf("unexpected suffix: %q", s[len(s)-5:])
	}

	// the payload between the wrapper pieces must round-trip as the graph
	payload := strings.TrimSuffix(strings.TrimPrefix(s, "function data(){return"), "};")
	var decoded models.NodeMap
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded["q0"].Name != "First Question" {
		t.Errorf("payload lost node content: %+v", decoded["q0"])
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	name, err := Write(dir, 42, models.NodeMap{"q0": {QID: "q0"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "data_42.js" {
		t.Errorf("unexpected file name %q", name)
	}

	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("preload file missing: %v", err)
	}
}
