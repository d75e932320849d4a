package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	got := ExtractVariables("Questions: {{.QuestionsJSON}} for {{ .Project.Name }} and {{.QuestionsJSON}}")
	if len(got) != 2 || got[0] != "Project.Name" || got[1] != "QuestionsJSON" {
		t.Errorf("ExtractVariables() = %v", got)
	}
}

func TestHashText(t *testing.T) {
	if HashText("a") == HashText("b") {
		t.Error("different text should hash differently")
	}
	if len(HashText("a")) != 64 {
		t.Errorf("hash length = %d, want 64", len(HashText("a")))
	}
}

func TestRender(t *testing.T) {
	out, err := Render("k", "Hello {{.Name}}", map[string]string{"Name": "world"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "Hello world" {
		t.Errorf("Render() = %q", out)
	}

	if _, err := Render("k", "Hello {{.Missing}}", map[string]string{}); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := Render("k", "Hello {{.Name", nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver(nil)
	r.Register(EmbeddedPrompt{Key: "extract.analysis", Text: "default {{.X}}"})

	t.Run("embedded default", func(t *testing.T) {
		p, err := r.Resolve("extract.analysis")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsOverride || p.Text != "default {{.X}}" {
			t.Errorf("resolved = %+v", p)
		}
		if p.Hash != HashText("default {{.X}}") {
			t.Error("hash mismatch")
		}
		if len(p.Variables) != 1 || p.Variables[0] != "X" {
			t.Errorf("Variables = %v", p.Variables)
		}
	})

	t.Run("override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.tmpl")
		if err := os.WriteFile(path, []byte("custom {{.Y}}"), 0o644); err != nil {
			t.Fatal(err)
		}
		r.SetOverrides(map[string]string{"extract.analysis": path})
		defer r.SetOverrides(nil)

		p, err := r.Resolve("extract.analysis")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsOverride || p.Source != path || !strings.HasPrefix(p.Text, "custom") {
			t.Errorf("resolved = %+v", p)
		}
	})

	t.Run("missing override file", func(t *testing.T) {
		r.SetOverrides(map[string]string{"extract.analysis": filepath.Join(t.TempDir(), "nope.tmpl")})
		defer r.SetOverrides(nil)
		if _, err := r.Resolve("extract.analysis"); err == nil {
			t.Error("expected error for unreadable override")
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := r.Resolve("nope"); err == nil {
			t.Error("expected error for unknown key")
		}
	})

	t.Run("all embedded", func(t *testing.T) {
		r.Register(EmbeddedPrompt{Key: "a.first", Text: "x"})
		all := r.AllEmbedded()
		if len(all) != 2 || all[0].Key != "a.first" {
			t.Errorf("AllEmbedded() = %+v", all)
		}
	})
}
