// Package urls builds the endpoint URLs of a router.
//
// Two endpoints are used: the SOAP control endpoint on the configured port
// (5000 by default) and the unauthenticated /currentsetting.htm page served
// by the web interface.
package urls
