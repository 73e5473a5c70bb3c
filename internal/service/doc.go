// Package service models the deployable unit behind pipeline components: a
// named container definition with either a build recipe or a prebuilt image,
// plus its runtime settings. Services convert to and from the compose
// descriptor variants and the per-service config directory layout.
package service
