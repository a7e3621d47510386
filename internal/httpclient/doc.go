// Package httpclient provides the HTTP transport used by network work units.
//
// [NewClient] returns an *http.Client with a bounded timeout and connection
// reuse, so repeated quote fetches share keep-alive connections:
//
//	client := httpclient.NewClient(10 * time.Second)
//	resp, err := client.Do(req)
//	if err != nil {
//		return err
//	}
//	body, err := httpclient.ReadBody(resp)
//
// [ReadBody] turns non-2xx responses into [HTTPError] values carrying the
// status code and a short body snippet.
package httpclient
