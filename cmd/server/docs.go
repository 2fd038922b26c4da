// Package main Nano Studio Server API
//
//	@title						Nano Studio Server API
//	@version					1.0
//	@description				Image and video generation studio backed by Gemini image and Veo video models.
//
//	@host						localhost:8080
//	@BasePath					/v1
//
//	@securityDefinitions.apikey	GoogApiKey
//	@in							header
//	@name						X-Goog-Api-Key
//	@description				Gemini API key. Optional when the server is configured with a fallback key.
//
//	@tag.name					Images
//	@tag.description			Synchronous image generation and editing
//
//	@tag.name					Panels
//	@tag.description			Storyboard, gallery, studio and video ad panels
//
//	@tag.name					Blobs
//	@tag.description			Downloaded video assets
package main
