// Package background resolves a background specification into something the
// page can render.
//
// Resolution order, first match wins:
//
//  1. "dots" and "boxes" are built-in patterns.
//  2. "img_<id>" is a cached image. An unknown id renders no background.
//  3. An http:// or https:// URL is served from the cache when it has been
//     fetched before; otherwise the URL itself is used and a background fetch
//     caches it for next time.
//  4. Anything else is a literal image path.
package background
