package artifact

import (
	"context"
	"regexp"
	"sync"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestWriteAndReadBack(t *testing.T) {
	s := newStore(t)
	name, err := s.Write(context.Background(), KindMarkup, "Migration Flow", "dot", []byte("digraph g {}"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := s.Read(KindMarkup, name)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "digraph g {}" {
		t.Fatalf("data = %q", data)
	}
}

func TestFilenameScheme(t *testing.T) {
	s := newStore(t)
	name, err := s.Write(context.Background(), KindSVG, "Cloud: Landing Zone!", "svg", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	// <slug>_<epochMillis>_<rand4>.<ext>
	re := regexp.MustCompile(`^cloud-landing-zone_\d{13}_[0-9a-z]{4}\.svg$`)
	if !re.MatchString(name) {
		t.Fatalf("name %q does not match scheme", name)
	}
}

func TestConcurrentWritesNeverCollide(t *testing.T) {
	s := newStore(t)
	const n = 40
	names := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := s.Write(context.Background(), KindMarkup, "d", "mmd", []byte("graph TD"))
			if err != nil {
				t.Errorf("Write: %v", err)
				return
			}
			names <- name
		}()
	}
	wg.Wait()
	close(names)
	seen := map[string]bool{}
	for name := range names {
		if seen[name] {
			t.Fatalf("duplicate artifact name %q", name)
		}
		seen[name] = true
	}
}

func TestReadRejectsTraversal(t *testing.T) {
	s := newStore(t)
	if _, err := s.Read(KindSVG, "../../etc/passwd"); err == nil {
		t.Fatal("traversal read succeeded, want error")
	}
}

func TestReadMissingIsErrNotFound(t *testing.T) {
	s := newStore(t)
	if _, err := s.Read(KindSVG, "nope.svg"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Migration Flow":  "migration-flow",
		"  A  B  ":        "a-b",
		"":                "diagram",
		"___":             "diagram",
		"OS-Based (v2)":   "os-based-v2",
		"Ärger im Netz":   "ärger-im-netz",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
