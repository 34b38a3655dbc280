package render

import (
	"strings"
	"sync"
	"testing"
)

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Title\n\nSome **bold** text.", DefaultOptions().WithStyle("notty"))
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	if !strings.Contains(out, "Title") {
		t.Errorf("rendered output missing heading text: %q", out)
	}
	if !strings.Contains(out, "bold") {
		t.Errorf("rendered output missing body text: %q", out)
	}
}

func TestMarkdownWithWidth(t *testing.T) {
	long := strings.Repeat("word ", 40)
	out, err := Markdown(long, DefaultOptions().WithStyle("notty").WithWidth(30))
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}

	for _, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > 40 {
			t.Errorf("line exceeds wrap width: %q", line)
		}
	}
}

func TestMarkdown_ConcurrentRenders(t *testing.T) {
	opts := DefaultOptions().WithStyle("notty")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := Markdown("- a\n- b\n- c", opts); err != nil {
					t.Errorf("Markdown failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()
}
