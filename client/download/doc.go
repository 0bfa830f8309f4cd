// Package download saves binary export responses to disk.
//
// [Target] picks the destination from the response's Content-Disposition
// header, and [Save] streams the body into a temp file that is renamed
// into place only once every byte has arrived:
//
//	dest, err := download.Target(dir, resp.Header.Get("Content-Disposition"),
//		download.WithFallbackName("export.xlsx"),
//	)
//	if err != nil {
//		return err
//	}
//	err = download.Save(ctx, resp.Body, resp.ContentLength, dest, logger)
//
// Most callers use [github.com/adamwoolhether/adminapi/client.Client.Download],
// which does both.
package download
