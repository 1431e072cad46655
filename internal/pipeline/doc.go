// Package pipeline sequences the stages of one harvest: crawling,
// contact deduplication, and any post-processing, each expressed as a
// Step mutating a shared crawl report. The pipeline itself only orders
// steps, logs them, and decides whether a failed step stops the run.
package pipeline
