package main

// General API documentation for swaggo. Run `swag init -g cmd/embedd/docs.go -o internal/docs` to regenerate.
//
// @title           embedd API
// @version         0.1.0
// @description     HTTP API for text embedding generation with native and OpenAI-compatible response shapes.
//
// @contact.name   embedd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
