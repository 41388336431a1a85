package ocr

import (
	"context"
	"errors"
	"image"
	"testing"
)

// fakeRecognizer returns canned text or errors per segmentation mode.
type fakeRecognizer struct {
	texts map[int]string
	errs  map[int]error
}

func (f *fakeRecognizer) Recognize(_ []byte, psm int) (string, error) {
	if err, ok := f.errs[psm]; ok {
		return "", err
	}
	return f.texts[psm], nil
}

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 8, 8))
}

var keywords = []string{"login", "log in", "sign in", "dang nhap", "password"}

func TestClassify_KeywordInOnePass(t *testing.T) {
	rec := &fakeRecognizer{texts: map[int]string{
		7: "Welcome back! Please LOGIN to continue",
	}}
	c := NewClassifier(rec, keywords, 0)

	res, err := c.Classify(context.Background(), testImage(), "Example Site")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if !res.PredictLogin {
		t.Error("PredictLogin = false, want true")
	}
	if res.WinningPSM != 7 {
		t.Errorf("WinningPSM = %d, want 7", res.WinningPSM)
	}
	if len(res.Jobs) != 13 {
		t.Fatalf("len(Jobs) = %d, want 13", len(res.Jobs))
	}
}

func TestClassify_WinnerIsMinimumPSM(t *testing.T) {
	rec := &fakeRecognizer{texts: map[int]string{
		11: "enter your password",
		3:  "sign in with your account",
		9:  "password required",
	}}
	c := NewClassifier(rec, keywords, 0)

	// Deterministic regardless of which worker finishes first.
	for i := 0; i < 10; i++ {
		res, err := c.Classify(context.Background(), testImage(), "")
		if err != nil {
			t.Fatalf("Classify returned error: %v", err)
		}
		if res.WinningPSM != 3 {
			t.Fatalf("run %d: WinningPSM = %d, want 3", i, res.WinningPSM)
		}
	}
}

func TestClassify_ErroredPassIsIsolated(t *testing.T) {
	rec := &fakeRecognizer{
		texts: map[int]string{5: "dang nhap he thong"},
		errs:  map[int]error{2: errors.New("engine exploded")},
	}
	c := NewClassifier(rec, keywords, 0)

	res, err := c.Classify(context.Background(), testImage(), "")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if !res.PredictLogin {
		t.Error("PredictLogin = false, want true despite one errored pass")
	}
	if res.WinningPSM != 5 {
		t.Errorf("WinningPSM = %d, want 5", res.WinningPSM)
	}

	if len(res.Jobs) != 13 {
		t.Fatalf("len(Jobs) = %d, want 13: errored passes must keep their slot", len(res.Jobs))
	}
	failed := res.Jobs[1] // PSM 2
	if failed.PSM != 2 || failed.Err == "" {
		t.Errorf("job for PSM 2 = %+v, want error recorded", failed)
	}
}

func TestClassify_NoMatch(t *testing.T) {
	rec := &fakeRecognizer{texts: map[int]string{
		1: "just a plain marketing page",
		8: "buy our product today",
	}}
	c := NewClassifier(rec, keywords, 0)

	res, err := c.Classify(context.Background(), testImage(), "Acme Corp")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if res.PredictLogin {
		t.Error("PredictLogin = true, want false")
	}
	if res.WinningPSM != -1 {
		t.Errorf("WinningPSM = %d, want -1", res.WinningPSM)
	}
}

func TestClassify_TitleMatch(t *testing.T) {
	// No pass text matches, but the title does. The winner is the lowest
	// non-errored PSM since every completed pass then counts as matching.
	rec := &fakeRecognizer{
		texts: map[int]string{4: "nothing interesting"},
		errs:  map[int]error{1: errors.New("bad psm")},
	}
	c := NewClassifier(rec, keywords, 0)

	res, err := c.Classify(context.Background(), testImage(), "Đăng nhập — Cổng thông tin")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}

	if !res.PredictLogin {
		t.Error("PredictLogin = false, want true via title match")
	}
	if res.WinningPSM != 2 {
		t.Errorf("WinningPSM = %d, want 2 (lowest non-errored PSM)", res.WinningPSM)
	}
}

func TestClassify_KeywordsAreNormalized(t *testing.T) {
	rec := &fakeRecognizer{texts: map[int]string{6: "vui long dang nhap"}}
	// Keyword supplied with diacritics must still match normalized text.
	c := NewClassifier(rec, []string{"Đăng nhập"}, 0)

	res, err := c.Classify(context.Background(), testImage(), "")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !res.PredictLogin {
		t.Error("PredictLogin = false, want true with diacritic keyword")
	}
}

func TestClassify_BoundedWorkers(t *testing.T) {
	rec := &fakeRecognizer{texts: map[int]string{}}
	c := NewClassifier(rec, keywords, 2)

	res, err := c.Classify(context.Background(), testImage(), "")
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if len(res.Jobs) != 13 {
		t.Errorf("len(Jobs) = %d, want 13 even with 2 workers", len(res.Jobs))
	}
}
