package crawl

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.NRGBA{R: 200, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFindImages(t *testing.T) {
	body := []byte(`<html><body>
<figure><a href="https://static.example/Puzzle001.png" class="image image-thumbnail" title="Puzzle001"><img src="https://static.example/thumb.png" alt="Puzzle001"></a></figure>
<img alt="Other" src="/other.png">
<img alt="Puzzle001S" data-src="/images/Puzzle001S.png" src="data:image/gif;base64,R0lGOD">
</body></html>`)

	imgs, err := FindImages("https://layton.fandom.com/wiki/Puzzle:001", body)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if imgs.Puzzle != "https://static.example/Puzzle001.png" {
		t.Errorf("Unexpected puzzle image %q", imgs.Puzzle)
	}
	if imgs.Answer != "https://layton.fandom.com/images/Puzzle001S.png" {
		t.Errorf("Unexpected answer image %q", imgs.Answer)
	}
}

func TestFindImages_SrcFallbackAndMissing(t *testing.T) {
	body := []byte(`<a href="/p.png" class="image image-thumbnail" title="P"></a><img alt="PS" src="/ps.png">`)
	imgs, err := FindImages("https://wiki.local/wiki/Puzzle:P", body)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if imgs.Answer != "https://wiki.local/ps.png" {
		t.Errorf("Expected src fallback, got %q", imgs.Answer)
	}

	imgs, err = FindImages("https://wiki.local/wiki/Puzzle:P", []byte(`<p>no images</p>`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if imgs.Puzzle != "" || imgs.Answer != "" {
		t.Errorf("Expected no images, got %+v", imgs)
	}
}

func TestToJPEG(t *testing.T) {
	out, err := ToJPEG(testPNG(t))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Expected JPEG output, got %v", err)
	}
	if cfg.Width != 4 || cfg.Height != 3 {
		t.Errorf("Expected 4x3, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestToJPEG_RejectsNonImages(t *testing.T) {
	if _, err := ToJPEG([]byte("<html>not an image</html>")); !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage, got %v", err)
	}
}
