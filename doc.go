// Package storage provides Go client bindings for the Supabase Storage
// HTTP API.
//
// The package offers two surfaces:
//
//   - [Client] speaks the REST API at /storage/v1, covering bucket
//     management, uploads, downloads, listing, move/copy, removal,
//     signed URLs, and public URLs.
//
//   - [S3Client] speaks the S3-compatible protocol at /storage/v1/s3
//     using aws-sdk-go-v2, for callers that need presigned uploads or
//     interoperate with S3 tooling.
//
// # Quick Start
//
//	import "github.com/supabase-community/storage-go"
//
//	client := storage.New("abcdefgh", os.Getenv("SERVICE_KEY"))
//
//	// Create a public bucket
//	_, err := client.CreateBucket(ctx, "avatars", storage.BucketOptions{Public: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Upload an object into it
//	f, _ := os.Open("me.png")
//	defer f.Close()
//	_, err = client.From("avatars").Upload(ctx, "user-1.png", f,
//	    &storage.FileOptions{ContentType: "image/png"},
//	)
//
//	// Hand out a link (no request needed for public buckets)
//	url := client.From("avatars").GetPublicURL("user-1.png")
//
// # Endpoints
//
// [New] derives the canonical hosted endpoint from a project
// reference:
//
//	https://<projectRef>.supabase.co/storage/v1
//
// Self-hosted and custom deployments pass an explicit endpoint to
// [NewWithEndpoint] instead. Both forms authenticate with an API key
// sent as a bearer token.
//
// # Errors
//
// Every operation returns either the decoded service response or an
// error. Responses with a 4xx/5xx status decode into [*Error], which
// carries the status code and the service's message; transport
// failures (DNS, refused connections, timeouts) surface as the
// underlying HTTP client error and never as [*Error]. Use [AsError]
// and [IsNotFound] to branch on service errors.
//
// # S3 protocol
//
// The S3 surface authenticates with project-scoped S3 access keys, not
// the API bearer token:
//
//	s3c, err := storage.NewS3Client(storage.S3Config{
//	    ProjectRef: "abcdefgh",
//	    AccessKey:  os.Getenv("S3_ACCESS_KEY"),
//	    SecretKey:  os.Getenv("S3_SECRET_KEY"),
//	})
package storage
