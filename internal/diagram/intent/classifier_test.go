package intent

import (
	"math/rand"
	"testing"
)

func newTestClassifier() *Classifier {
	return NewClassifier("rivermeadow", rand.New(rand.NewSource(1)))
}

func TestQuestionsDoNotTriggerDiagrams(t *testing.T) {
	prompts := []string{
		"What is an OS-based migration?",
		"How does the appliance connect to the source?",
		"Can I migrate a Windows 2016 workload?",
		"Why would the cutover fail?",
		"Does the agent need outbound access?",
	}
	c := newTestClassifier()
	for _, p := range prompts {
		if got := c.Classify(p); got.IsDiagramRequest {
			t.Errorf("Classify(%q).IsDiagramRequest = true, want false", p)
		}
	}
}

func TestQuestionWithExplicitVisualRequest(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify("Can you draw a diagram of the migration process?")
	if !got.IsDiagramRequest {
		t.Fatal("explicit visual request inside a question must classify as diagram request")
	}
}

func TestMigrationDiagramShortCircuit(t *testing.T) {
	c := newTestClassifier()
	prompts := []string{
		"migration diagram",
		"I want a DIAGRAM of the Migration",
		"diagram the migration for me",
	}
	for _, p := range prompts {
		if got := c.Classify(p); !got.IsDiagramRequest {
			t.Errorf("Classify(%q).IsDiagramRequest = false, want true", p)
		}
	}
}

func TestProductPlusVisualTermForcesRequest(t *testing.T) {
	c := newTestClassifier()
	if got := c.Classify("rivermeadow picture"); !got.IsDiagramRequest {
		t.Fatal("product name with a visual term must force a diagram request")
	}
}

func TestLowScorePromptsAreNotRequests(t *testing.T) {
	c := newTestClassifier()
	for _, p := range []string{"hello there", "tell me about pricing", "thanks"} {
		if got := c.Classify(p); got.IsDiagramRequest {
			t.Errorf("Classify(%q).IsDiagramRequest = true, want false", p)
		}
	}
}

func TestCategorySelectionStaysOnTopic(t *testing.T) {
	c := newTestClassifier()
	// "migration" and "architecture" both score; jitter plus the
	// second-best pick keeps the outcome within those two sets.
	allowed := map[Category]bool{CategoryMigration: true, CategorySoftware: true}
	for i := 0; i < 100; i++ {
		got := c.Classify("Show me the RiverMeadow migration architecture diagram")
		if !got.IsDiagramRequest {
			t.Fatal("prompt must classify as a diagram request")
		}
		if !allowed[got.Category] {
			t.Fatalf("unexpected category %q", got.Category)
		}
	}
}

func TestCategoryDefaultsToProcess(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify("draw a diagram")
	if !got.IsDiagramRequest {
		t.Fatal("want diagram request")
	}
	if got.Category != CategoryProcess {
		t.Fatalf("category = %q, want %q when nothing scores", got.Category, CategoryProcess)
	}
}

func TestClassifyEmptyPrompt(t *testing.T) {
	c := newTestClassifier()
	got := c.Classify("   ")
	if got.IsDiagramRequest {
		t.Fatal("empty prompt must not request a diagram")
	}
}
