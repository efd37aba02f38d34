// Package google builds authenticated HTTP clients for the Google APIs the
// tracker talks to: Sheets for storage, Cloud Vision for OCR and Cloud
// Speech-to-Text for transcription.
//
// Credentials come from a service account or authorized-user JSON file when
// one is configured, and from Application Default Credentials otherwise.
package google
