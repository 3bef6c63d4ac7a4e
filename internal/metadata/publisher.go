// Package metadata builds and publishes off-chain token metadata documents.
package metadata

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"regexp"
	"strings"

	"solana-token-forge/internal/domain"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/pinning"
)

// dataURIPrefix matches a data-URI header on client-supplied image payloads.
var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// Request carries the fields of one publish call.
type Request struct {
	Name        string
	Symbol      string
	Description string
	ImageBase64 string
	Creator     *domain.CreatorInfo
	Social      *domain.SocialLinks
}

// Result is the outcome of a publish call. ImageWarning is set when the
// image upload failed and metadata was published without it.
type Result struct {
	MetadataURL  string
	ImageURL     string
	ImageWarning string
}

// Publisher uploads an optional image and a metadata JSON document to the
// pinning service. Steps are sequential: the document embeds the image URI.
type Publisher struct {
	pin    pinning.Pinner
	logger *log.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(pin pinning.Pinner, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{pin: pin, logger: logger}
}

// Publish validates the request, uploads the image if present, then uploads
// the metadata document. An image failure is information loss, not a request
// failure: it is logged, surfaced in Result.ImageWarning and the publish
// continues. A failure of the document upload itself is fatal.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	doc := domain.MetadataDocument{
		Name:        strings.TrimSpace(req.Name),
		Symbol:      domain.NormalizeSymbol(req.Symbol),
		Description: req.Description,
		Properties: domain.MetadataProperties{
			Files:    []domain.MetadataFile{},
			Category: "image",
		},
		Attributes: []domain.MetadataAttribute{},
	}

	result := &Result{}

	if req.ImageBase64 != "" {
		imageURL, err := p.uploadImage(ctx, req.ImageBase64)
		if err != nil {
			p.logger.Printf("image upload failed, continuing without image: %v", err)
			observability.DefaultMetrics.ImageUploadSkips.Inc()
			result.ImageWarning = "image upload failed; metadata published without image"
		} else {
			doc.Image = imageURL
			doc.Properties.Files = append(doc.Properties.Files, domain.MetadataFile{
				URI:  imageURL,
				Type: "image/" + imageFormat(req.ImageBase64),
			})
			result.ImageURL = imageURL
		}
	}

	applyCreator(&doc, req.Creator)
	applySocial(&doc, req.Social)

	metadataURL, err := p.pin.UploadJSON(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("upload metadata document: %w", err)
	}

	result.MetadataURL = metadataURL
	return result, nil
}

func validate(req Request) error {
	if strings.TrimSpace(req.Name) == "" {
		return domain.ErrNameRequired
	}
	if len(req.Name) > domain.MaxNameBytes {
		return domain.ErrNameTooLong
	}
	if strings.TrimSpace(req.Symbol) == "" {
		return domain.ErrSymbolRequired
	}
	if len(domain.NormalizeSymbol(req.Symbol)) > domain.MaxSymbolBytes {
		return domain.ErrSymbolTooLong
	}
	return nil
}

func (p *Publisher) uploadImage(ctx context.Context, imageBase64 string) (string, error) {
	raw := dataURIPrefix.ReplaceAllString(imageBase64, "")
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}
	return p.pin.UploadFile(ctx, data, "image."+imageFormat(imageBase64))
}

// imageFormat sniffs the image format from the decoded payload's magic
// bytes, defaulting to png.
func imageFormat(imageBase64 string) string {
	raw := dataURIPrefix.ReplaceAllString(imageBase64, "")
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(data) < 4 {
		return "png"
	}
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "gif"
	case len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	default:
		return "png"
	}
}

func applyCreator(doc *domain.MetadataDocument, creator *domain.CreatorInfo) {
	if creator == nil || creator.Name == "" {
		return
	}
	doc.Properties.Creator = creator.Name
	if creator.Address != "" {
		doc.Creators = []domain.MetadataCreator{
			{Address: creator.Address, Verified: false, Share: 100},
		}
	}
}

func applySocial(doc *domain.MetadataDocument, social *domain.SocialLinks) {
	if social == nil {
		return
	}

	for _, link := range []struct {
		trait string
		value string
	}{
		{"Website", social.Website},
		{"Twitter", social.Twitter},
		{"Telegram", social.Telegram},
		{"Discord", social.Discord},
		{"Github", social.Github},
	} {
		if link.value != "" {
			doc.Attributes = append(doc.Attributes, domain.MetadataAttribute{
				TraitType: link.trait,
				Value:     link.value,
			})
		}
	}

	for _, candidate := range []string{social.Website, social.Twitter, social.Telegram, social.Discord} {
		if candidate != "" {
			doc.ExternalURL = candidate
			break
		}
	}
}
