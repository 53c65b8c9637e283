// Package client provides the lakehouse API client: authentication, catalog
// listing and search, collection creation and chunked file transfer over
// signed URLs.
//
// # Basic Usage
//
// Create a client, log in and list collections:
//
//	c, err := client.New("http://localhost:8000")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if _, err := c.Authenticate(ctx, "user1@gmail.com", "secret"); err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := c.ListCollections(ctx, client.ListOptions{SortKey: "inserted_at"}, output.ModeText)
//	if err != nil {
//		log.Fatal(err)
//	}
//	res.WriteTo(os.Stdout)
//
// # Searching
//
// Queries take the form KEY OPERATOR VALUE, and every query must match:
//
//	res, err := c.SearchFiles(ctx, output.ModeJSON, "file_name*csv", "file_size>=1024")
//
// # Transfers
//
// Uploads are sent to a signed URL in 10 MiB chunks and downloads are read
// in 1 MiB chunks. Register a callback with WithProgress to follow them:
//
//	rec, err := c.UploadFile(ctx, client.UploadOptions{
//		LocalPath:    "./measurements.csv",
//		FileName:     "measurements",
//		CollectionID: collectionID,
//	})
//
// # Profile Configuration
//
// Profiles in ~/.lakehouse/config.yaml hold endpoints and credentials:
//
//	configFile, err := client.LoadConfigFile(client.DefaultConfigPath())
//	profile, err := configFile.GetProfile("production")
//	c, err := client.NewFromConfig(client.ConfigFromProfile(profile))
package client
