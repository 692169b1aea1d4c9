// Package prodcrawl discovers product-detail pages on unfamiliar
// e-commerce and supplier websites. Instead of exhaustive breadth-first
// traversal it explores the site's link graph under guidance from an AI
// scoring model: candidate links are scored for how likely they lead to
// a product description page, and a priority scheduler always expands
// the most promising path next.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., gemini/,
// rod/, goquery/, sqlite/); the exploration engine lives in explore/.
package prodcrawl
