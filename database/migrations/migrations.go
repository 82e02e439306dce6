// Package migrations registers the shop schema. Importing it for side
// effects makes the migrations visible to `shop migrate`.
package migrations
