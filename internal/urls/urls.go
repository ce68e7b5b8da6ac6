package urls

import (
	"fmt"
	"net"
	"strconv"
)

// SOAPPath is the path of the router's SOAP endpoint
const SOAPPath = "/soap/server_sa/"

// CurrentSettingPath is the unauthenticated information page
const CurrentSettingPath = "/currentsetting.htm"

// SOAPURL returns the SOAP endpoint for a router, e.g.
// http://routerlogin.net:5000/soap/server_sa/
func SOAPURL(host string, port int) string {
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(host, strconv.Itoa(port)), SOAPPath)
}

// CurrentSettingURL returns the information page for a router.
// The page is always served by the web interface on port 80.
func CurrentSettingURL(host string) string {
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		host = "[" + host + "]"
	}
	return "http://" + host + CurrentSettingPath
}
