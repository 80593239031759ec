// Package syncer implements the context synchronizer: it makes the local
// filesystem match the intended layout for a sync root (one canonical
// AGENTS.md plus per-assistant aliases), reconciling any pre-existing local
// document against the remote template without silently discarding user
// customizations.
//
// The remote fetch and alias creation are injectable (TemplateSource, Linker)
// so the reconciliation logic is testable without network access or real
// symlinks.
package syncer
