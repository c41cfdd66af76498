// Package knowledge loads the curated interpretation reference documents: the
// element/condition/keyword entries matched against narrative text, and the
// taxonomy attributing each emotion keyword to a persona type. Both are parsed
// once at startup and shared read-only by every pipeline run.
package knowledge
