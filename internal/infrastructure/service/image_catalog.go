// Package service contains supporting infrastructure services that are not
// persistence or external API clients.
package service

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMAGE CATALOG
// Curated, kid-safe illustration sets per topic. A static catalog instead of
// a live image search keeps every image pre-vetted; unknown topics get a
// generic educational set with the topic spliced into the alt text.
// ══════════════════════════════════════════════════════════════════════════════

// Image is a single curated illustration for an article.
type Image struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Thumbnail    string `json:"thumbnail"`
	Alt          string `json:"alt"`
	Photographer string `json:"photographer"`
	Position     int    `json:"position"`
}

// ImageCatalog resolves topics to curated image sets.
type ImageCatalog struct {
	byTopic map[string][]Image
}

// NewImageCatalog creates the catalog with the built-in curated sets.
func NewImageCatalog() *ImageCatalog {
	return &ImageCatalog{byTopic: curatedImages()}
}

// ImagesFor returns up to count images for a topic. Topics without a curated
// set receive generic educational images.
func (c *ImageCatalog) ImagesFor(topic string, count int) []Image {
	if count <= 0 {
		return nil
	}

	key := strings.ToLower(strings.TrimSpace(topic))
	images, ok := c.byTopic[key]
	if !ok {
		images = genericImages(topic)
	}

	if len(images) > count {
		images = images[:count]
	}

	out := make([]Image, len(images))
	copy(out, images)
	return out
}

func curatedImages() map[string][]Image {
	return map[string][]Image{
		"dragons": {
			{
				ID:           "dragon1",
				URL:          "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400",
				Alt:          "Fantasy dragon artwork",
				Photographer: "Unsplash Community",
				Position:     1,
			},
			{
				ID:           "dragon2",
				URL:          "https://images.unsplash.com/photo-1518709268805-4e9042af2176?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1518709268805-4e9042af2176?w=400",
				Alt:          "Medieval fantasy art",
				Photographer: "Unsplash Community",
				Position:     2,
			},
			{
				ID:           "dragon3",
				URL:          "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=400",
				Alt:          "Mystical dragon illustration",
				Photographer: "Unsplash Community",
				Position:     3,
			},
		},
		"pizza": {
			{
				ID:           "pizza1",
				URL:          "https://images.unsplash.com/photo-1513104890138-7c749659a591?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1513104890138-7c749659a591?w=400",
				Alt:          "Delicious pizza",
				Photographer: "Unsplash Community",
				Position:     1,
			},
			{
				ID:           "pizza2",
				URL:          "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?w=400",
				Alt:          "Fresh pizza ingredients",
				Photographer: "Unsplash Community",
				Position:     2,
			},
		},
		"space": {
			{
				ID:           "space1",
				URL:          "https://images.unsplash.com/photo-1446776877081-d282a0f896e2?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1446776877081-d282a0f896e2?w=400",
				Alt:          "Beautiful galaxy and stars",
				Photographer: "Unsplash Community",
				Position:     1,
			},
			{
				ID:           "space2",
				URL:          "https://images.unsplash.com/photo-1614728263952-84ea256f9679?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1614728263952-84ea256f9679?w=400",
				Alt:          "Colorful nebula in space",
				Photographer: "Unsplash Community",
				Position:     2,
			},
		},
		"robots": {
			{
				ID:           "robot1",
				URL:          "https://images.unsplash.com/photo-1518709268805-4e9042af2176?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1518709268805-4e9042af2176?w=400",
				Alt:          "Advanced robot technology",
				Photographer: "Unsplash Community",
				Position:     1,
			},
		},
		"dinosaurs": {
			{
				ID:           "dino1",
				URL:          "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400",
				Alt:          "Dinosaur fossils and paleontology",
				Photographer: "Unsplash Community",
				Position:     1,
			},
		},
		"ocean": {
			{
				ID:           "ocean1",
				URL:          "https://images.unsplash.com/photo-1518837695005-2083093ee35b?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1518837695005-2083093ee35b?w=400",
				Alt:          "Deep blue ocean waves",
				Photographer: "Unsplash Community",
				Position:     1,
			},
		},
		"volcanoes": {
			{
				ID:           "volcano1",
				URL:          "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=800",
				Thumbnail:    "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=400",
				Alt:          "Volcanic mountain landscape",
				Photographer: "Unsplash Community",
				Position:     1,
			},
		},
	}
}

func genericImages(topic string) []Image {
	return []Image{
		{
			ID:           "education1",
			URL:          "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=800",
			Thumbnail:    "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=400",
			Alt:          fmt.Sprintf("Learning about %s", topic),
			Photographer: "Unsplash Community",
			Position:     1,
		},
		{
			ID:           "education2",
			URL:          "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
			Thumbnail:    "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400",
			Alt:          fmt.Sprintf("Exploring %s", topic),
			Photographer: "Unsplash Community",
			Position:     2,
		},
	}
}
