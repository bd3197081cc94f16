package audit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/sitectl/internal/model"
)

// ErrNoHTTPClient is returned when no HTTP client is configured.
var ErrNoHTTPClient = errors.New("no HTTP client configured: call SetHTTPClient first")

// defaultMaxImageSize caps image downloads.
const defaultMaxImageSize = 5 * 1024 * 1024

// EXIFAnalyzer extracts EXIF metadata from images published on the site.
// Screenshots and photos often carry more than intended: GPS positions,
// camera serial numbers, editing software and the author's name.
//
// Only images on the audited host are fetched.
type EXIFAnalyzer struct {
	// httpClient fetches images.
	httpClient *http.Client

	// maxImageSize limits the size of images to download.
	maxImageSize int64

	// imageURLPattern matches formats that carry EXIF.
	imageURLPattern *regexp.Regexp
}

// NewEXIFAnalyzer creates a new EXIFAnalyzer.
// SetHTTPClient must be called before Analyze.
func NewEXIFAnalyzer() *EXIFAnalyzer {
	return &EXIFAnalyzer{
		maxImageSize:    defaultMaxImageSize,
		imageURLPattern: regexp.MustCompile(`(?i)\.(jpe?g|tiff?)$`),
	}
}

// Name returns the analyzer name.
func (a *EXIFAnalyzer) Name() string {
	return "exif"
}

// Category returns the analyzer category.
func (a *EXIFAnalyzer) Category() string {
	return CategoryMedia
}

// SetHTTPClient sets the client used to download images.
func (a *EXIFAnalyzer) SetHTTPClient(client *http.Client) {
	a.httpClient = client
}

// Analyze fetches every same-host JPEG and TIFF image once and reports
// the metadata it carries.
func (a *EXIFAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Finding, error) {
	if a.httpClient == nil {
		return nil, ErrNoHTTPClient
	}

	findings := make([]model.Finding, 0)
	processed := make(map[string]bool)
	siteHost := hostOf(data.Site)

	for _, page := range data.Pages {
		for _, imgURL := range page.Images {
			select {
			case <-ctx.Done():
				return findings, ctx.Err()
			default:
			}

			if processed[imgURL] || !a.isAllowedURL(imgURL, siteHost) {
				continue
			}
			processed[imgURL] = true

			imageData, err := a.fetch(ctx, imgURL)
			if err != nil {
				continue
			}
			findings = append(findings, analyzeImageData(imageData, imgURL)...)
		}
	}

	return findings, nil
}

// isAllowedURL reports whether imageURL is an EXIF-capable image on the
// audited host.
func (a *EXIFAnalyzer) isAllowedURL(imageURL, siteHost string) bool {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	if !strings.EqualFold(parsed.Host, siteHost) {
		return false
	}
	return a.imageURLPattern.MatchString(parsed.Path)
}

func (a *EXIFAnalyzer) fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(resp.Status)
	}
	if resp.ContentLength > a.maxImageSize {
		return nil, errors.New("image too large")
	}
	return io.ReadAll(io.LimitReader(resp.Body, a.maxImageSize))
}

// analyzeImageData extracts EXIF tags from image bytes.
// Images without EXIF produce no findings.
func analyzeImageData(imageData []byte, imageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	rawExif, err := exif.SearchAndExtractExif(imageData)
	if err != nil || rawExif == nil {
		return findings
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return findings
	}

	for _, entry := range entries {
		value := entry.TagName + ": " + strings.TrimSpace(entry.Formatted)

		switch entry.TagName {
		case "GPSLatitude", "GPSLongitude", "GPSLatitudeRef", "GPSLongitudeRef":
			findings = append(findings, model.NewFinding(model.FindingExifGPS,
				"GPS Coordinates in Image EXIF",
				"A published image contains the position where it was taken.",
				value, imageURL))

		case "Make", "Model", "SerialNumber", "CameraSerialNumber", "BodySerialNumber", "LensSerialNumber":
			findings = append(findings, model.NewFinding(model.FindingExifCamera,
				"Camera Information in Image EXIF",
				"A published image identifies the device that produced it.",
				value, imageURL))

		case "Software", "ProcessingSoftware", "HostComputer":
			findings = append(findings, model.NewFinding(model.FindingExifSoftware,
				"Software Information in Image EXIF",
				"A published image names the software or computer that processed it.",
				value, imageURL))

		case "Artist", "Copyright", "XPAuthor":
			findings = append(findings, model.NewFinding(model.FindingExifAuthor,
				"Author Information in Image EXIF",
				"A published image carries author or copyright metadata.",
				value, imageURL))
		}
	}

	return findings
}

var _ CheckAnalyzer = (*EXIFAnalyzer)(nil)
