package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type abhaFetcher interface {
	Fetch(ctx context.Context, abhaID string) (json.RawMessage, error)
}

type ABHAUsecase struct {
	client abhaFetcher
}

func NewABHAUsecase(client abhaFetcher) *ABHAUsecase {
	return &ABHAUsecase{client: client}
}

type lookupInput struct {
	AbhaID string `validate:"required,max=64"`
}

// Lookup proxies a health-identity lookup to the ABHA API.
func (u *ABHAUsecase) Lookup(ctx context.Context, abhaID string) (json.RawMessage, error) {
	in := lookupInput{AbhaID: strings.TrimSpace(abhaID)}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	doc, err := u.client.Fetch(ctx, in.AbhaID)
	if err != nil {
		return nil, fmt.Errorf("fetch abha %s: %w", in.AbhaID, err)
	}
	return doc, nil
}
