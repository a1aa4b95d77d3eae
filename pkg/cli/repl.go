package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/funvibe/tagval/internal/config"
	"github.com/funvibe/tagval/internal/heap"
	"github.com/funvibe/tagval/internal/inspect"
	"github.com/funvibe/tagval/internal/interop"
	"github.com/funvibe/tagval/internal/literal"
	"github.com/funvibe/tagval/internal/snapshot"
	"github.com/funvibe/tagval/internal/store"
	"github.com/funvibe/tagval/pkg/typed"
)

const replHelp = `Enter a literal to classify it. Commands:
  :tag            show the heap tag of the last value
  :yaml           encode the last value as YAML
  :proto          encode the last value as a protobuf Struct (JSON form)
  :save NAME      snapshot the last value into the store
  :load NAME      restore a snapshot as the last value
  :snapshots      list stored snapshots
  :delete NAME    remove a snapshot
  :release        release the last value's slot
  :sweep          reclaim released slots
  :compact        compact the heap
  :help           this help
  :quit           exit
`

type session struct {
	out     io.Writer
	h       *heap.Heap
	last    heap.Handle
	hasLast bool
	db      *store.Store
}

func newSession(out io.Writer) *session {
	return &session{out: out, h: heap.New()}
}

func (s *session) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func runREPL() int {
	s := newSession(os.Stdout)
	defer s.close()

	tty := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if tty {
		fmt.Println("tagval — literal classifier. :help for commands.")
	}

	in := bufio.NewScanner(os.Stdin)
	for {
		if tty {
			fmt.Print(config.DefaultPrompt)
		}
		if !in.Scan() {
			return 0
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			return 0
		}
		if err := s.eval(line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func (s *session) eval(line string) error {
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}

	v, err := literal.Read(s.h, line)
	if err != nil {
		return err
	}
	s.last, s.hasLast = v, true
	return s.show(v)
}

// show classifies v and prints it. Classification panics on reclaimed
// handles by contract; the REPL turns that into a printed error instead of
// dying, since dangling handles are one of the things it exists to poke at.
func (s *session) show(v heap.Handle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	variant := typed.Classify(s.h, v)
	fmt.Fprintf(s.out, "=> %s : %s\n", inspect.Render(variant), typed.Kind(variant))
	return nil
}

func (s *session) command(line string) error {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case ":help", ":h":
		fmt.Fprint(s.out, replHelp)
		return nil
	case ":tag":
		v, err := s.lastValue()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s\n", s.h.TagOf(v))
		return nil
	case ":yaml":
		variant, err := s.lastVariant()
		if err != nil {
			return err
		}
		data, err := interop.ToYAML(variant)
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, string(data))
		return nil
	case ":proto":
		variant, err := s.lastVariant()
		if err != nil {
			return err
		}
		pv, err := interop.ToStruct(variant)
		if err != nil {
			return err
		}
		data, err := protojson.Marshal(pv)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s\n", data)
		return nil
	case ":save":
		if arg == "" {
			return fmt.Errorf(":save needs a name")
		}
		v, err := s.lastValue()
		if err != nil {
			return err
		}
		data, err := snapshot.Encode(s.h, v)
		if err != nil {
			return err
		}
		db, err := s.store()
		if err != nil {
			return err
		}
		if err := db.Save(arg, data); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "saved %q (%d bytes)\n", arg, len(data))
		return nil
	case ":load":
		if arg == "" {
			return fmt.Errorf(":load needs a name")
		}
		db, err := s.store()
		if err != nil {
			return err
		}
		data, err := db.Load(arg)
		if err != nil {
			return err
		}
		v, err := snapshot.Decode(s.h, data)
		if err != nil {
			return err
		}
		s.last, s.hasLast = v, true
		return s.show(v)
	case ":snapshots":
		db, err := s.store()
		if err != nil {
			return err
		}
		entries, err := db.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(s.out, "%-20s %6d bytes  %s\n", e.Name, e.Size, e.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	case ":delete":
		if arg == "" {
			return fmt.Errorf(":delete needs a name")
		}
		db, err := s.store()
		if err != nil {
			return err
		}
		return db.Delete(arg)
	case ":release":
		v, err := s.lastValue()
		if err != nil {
			return err
		}
		if s.h.Release(v) {
			fmt.Fprintln(s.out, "released")
		} else {
			fmt.Fprintln(s.out, "not releasable (immediate, symbol, or already gone)")
		}
		return nil
	case ":sweep":
		fmt.Fprintf(s.out, "swept %d slots\n", s.h.Sweep())
		return nil
	case ":compact":
		fmt.Fprintf(s.out, "moved %d slots\n", s.h.Compact())
		return nil
	default:
		return fmt.Errorf("unknown command %s (:help for help)", cmd)
	}
}

func (s *session) lastValue() (heap.Handle, error) {
	if !s.hasLast {
		return heap.NilHandle, fmt.Errorf("no value yet")
	}
	return s.last, nil
}

func (s *session) lastVariant() (variant typed.Variant, err error) {
	v, err := s.lastValue()
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return typed.Classify(s.h, v), nil
}

func (s *session) store() (*store.Store, error) {
	if s.db == nil {
		db, err := store.Open(config.DefaultStorePath)
		if err != nil {
			return nil, err
		}
		s.db = db
	}
	return s.db, nil
}
