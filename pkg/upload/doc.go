// Package upload stores user avatars.
//
// Store has two implementations: DiskStore keeps files under a local
// directory and S3Store keeps them in a bucket. Receive reads one file out
// of a multipart request, enforcing a size limit and an allow-list of MIME
// types detected from the content rather than the client's part header:
//
//	file, err := upload.Receive(w, r, store, "avatar", upload.AvatarConfig())
//	if err != nil {
//	    return err
//	}
//	user.Avatar = file.ID
//
// ServeFile returns a handler that streams a stored file back by id.
package upload
