// Package params reads the timer page's query parameters and builds the
// shareable URL that reproduces a given set of settings.
//
// The page takes three parameters:
//
//	timer  minute count ("05") or end time ("23:59"), default "00"
//	wall   background: dots, boxes, img_<id>, a URL or a path, default "dots"
//	msg    message shown above the countdown, default "Timer"
package params
