package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/fxgurv/ALONE/errors"
	"github.com/fxgurv/ALONE/generation"
	"github.com/fxgurv/ALONE/util"
)

// ImageProviderName is the dispatch id of the DALL-E backend.
const ImageProviderName = "dalle"

var imageModels = []string{goopenai.CreateImageModelDallE2, goopenai.CreateImageModelDallE3}

// Image generates 1024x1024 images with DALL-E and returns their URL.
type Image struct {
	cfg    Config
	client *goopenai.Client
}

// NewImage creates the DALL-E backend. A missing key is reported at
// generation time, not here.
func NewImage(cfg Config) (*Image, error) {
	cfg.applyDefaults(DefaultBaseURL, goopenai.CreateImageModelDallE3)
	client, err := newClient(ImageProviderName, cfg)
	if err != nil {
		return nil, err
	}
	return &Image{cfg: cfg, client: client}, nil
}

func (g *Image) Name() string                       { return ImageProviderName }
func (g *Image) IsAvailable(_ context.Context) bool { return g.cfg.APIKey != "" }
func (g *Image) Models() []string                   { return imageModels }

// CheckCredentials reports a missing OPENAI_API_KEY.
func (g *Image) CheckCredentials() error {
	if g.cfg.APIKey == "" {
		return errors.MissingCredential(ImageProviderName, "OPENAI_API_KEY")
	}
	return nil
}

// Generate requests one image and returns its download URL.
func (g *Image) Generate(ctx context.Context, req generation.Request) (generation.Artifact, error) {
	model := util.Coalesce(req.ModelOrVoice, g.cfg.Model)
	resp, err := g.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         req.Payload,
		Model:          model,
		Size:           goopenai.CreateImageSize1024x1024,
		ResponseFormat: goopenai.CreateImageResponseFormatURL,
		N:              1,
	})
	if err != nil {
		return generation.Artifact{}, fmt.Errorf("dalle: create image: %w", classify(ImageProviderName, err))
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return generation.Artifact{}, errors.MissingField(ImageProviderName, "data[0].url")
	}
	return generation.Artifact{URL: resp.Data[0].URL}, nil
}

var (
	_ generation.SyncBackend       = (*Image)(nil)
	_ generation.CredentialChecker = (*Image)(nil)
	_ generation.Cataloger         = (*Image)(nil)
)
