package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/tagval/internal/store"
)

func testSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := newSession(&out)
	db, err := store.Open(filepath.Join(t.TempDir(), "repl.db"))
	if err != nil {
		t.Fatal(err)
	}
	s.db = db
	t.Cleanup(s.close)
	return s, &out
}

func TestEvalLiteral(t *testing.T) {
	s, out := testSession(t)

	if err := s.eval(`[1, "two"]`); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "=> [1, \"two\"] : Array\n" {
		t.Errorf("output = %q", got)
	}

	if err := s.eval("not a literal"); err == nil {
		t.Error("junk input should error")
	}
}

func TestTagCommand(t *testing.T) {
	s, out := testSession(t)

	if err := s.eval(":tag"); err == nil {
		t.Error(":tag before any value should error")
	}

	s.eval("3.5")
	out.Reset()
	if err := s.eval(":tag"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "FLOAT\n" {
		t.Errorf(":tag = %q", out.String())
	}
}

func TestYAMLAndProtoCommands(t *testing.T) {
	s, out := testSession(t)
	s.eval(`{:a => 1}`)

	out.Reset()
	if err := s.eval(":yaml"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "a: 1\n" {
		t.Errorf(":yaml = %q", out.String())
	}

	out.Reset()
	if err := s.eval(":proto"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"a"`) {
		t.Errorf(":proto = %q", out.String())
	}
}

func TestSaveLoadCommands(t *testing.T) {
	s, out := testSession(t)
	s.eval("[1, 2, 3]")

	out.Reset()
	if err := s.eval(":save trio"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `saved "trio"`) {
		t.Errorf(":save output = %q", out.String())
	}

	s.eval("nil") // clobber the last value
	out.Reset()
	if err := s.eval(":load trio"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "=> [1, 2, 3] : Array\n" {
		t.Errorf(":load output = %q", got)
	}

	out.Reset()
	if err := s.eval(":snapshots"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "trio") {
		t.Errorf(":snapshots output = %q", out.String())
	}

	if err := s.eval(":delete trio"); err != nil {
		t.Fatal(err)
	}
	if err := s.eval(":load trio"); err == nil {
		t.Error("loading a deleted snapshot should error")
	}

	if err := s.eval(":save"); err == nil {
		t.Error(":save without a name should error")
	}
}

func TestLifecycleCommands(t *testing.T) {
	s, out := testSession(t)
	s.eval(`"short lived"`)

	out.Reset()
	if err := s.eval(":release"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "released\n" {
		t.Errorf(":release = %q", out.String())
	}

	out.Reset()
	if err := s.eval(":sweep"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "swept 1 slots\n" {
		t.Errorf(":sweep = %q", out.String())
	}

	// The last handle now dangles; classification reports it as an error
	// instead of killing the session.
	if err := s.eval(":yaml"); err == nil {
		t.Error("classifying a reclaimed handle should surface as an error")
	}

	out.Reset()
	s.eval("1")
	if err := s.eval(":release"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "not releasable") {
		t.Errorf("immediate release output = %q", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	s, _ := testSession(t)
	if err := s.eval(":frobnicate"); err == nil {
		t.Error("unknown command should error")
	}
}
