// Package models holds the domain types shared across services, repositories, and tasks.
//
// [Album] is the user-facing view of a saved album; [SavedAlbum] is its
// persisted form. Ratings travel separately through the ratings package and
// are attached to albums when a library is loaded.
package models
