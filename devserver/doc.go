// Package devserver is a local implementation of the lakehouse REST backend
// for development and end-to-end tests.
//
// It keeps collections and file records as ordered JSON documents in a
// catalog.Repo, stores uploaded contents in a blob store and hands out
// signed URLs for chunked uploads and downloads. Catalog routes are
// protected by HS256 bearer tokens issued at login.
//
// The HTTP surface lives in the devserver/http package:
//
//	svc, _ := devserver.NewService(devserver.ServiceConfig{...})
//	handler := devhttp.NewHandler(&devhttp.HandlerConfig{}, svc)
//	http.ListenAndServe(":8000", handler.Router())
package devserver
