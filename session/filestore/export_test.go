package filestore

var DeriveKey = deriveKey

func WithKeyDerivation(fn func(passphrase, salt []byte) []byte) Option {
	return func(f *FileStore) {
		f.deriveKey = fn
	}
}
