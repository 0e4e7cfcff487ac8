// Package brand defines the ten-station brand identity journey over
// document.BrandStrategy.
package brand
