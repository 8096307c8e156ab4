// Package codec implements the payload obfuscation and integrity check used on
// the provisioning link.
//
// # Obfuscation
//
// Payloads are XORed position-wise with a fixed, repeating key:
//
//	out[i] = in[i] ^ key[i % len(key)]
//
// Encode and Decode are the same operation and therefore mutual inverses. This is
// obfuscation, NOT encryption: anyone who knows (or guesses) the key recovers the
// plaintext, and the key is shared out-of-band with every companion app.
//
// # Checksum
//
// The checksum is a single byte, the XOR-fold of every byte of the input. XOR is
// commutative, so reordering bytes does not change the result, and two flipped
// bits in the same position cancel out. Treat it as a guard against accidental
// truncation and corruption only, never as tamper detection.
//
// # Sealed Frames
//
// A sealed frame carries the checksum of the plaintext as its final byte:
//
//	frame = Encode(plain) || Checksum(plain)
//
// Open reverses Seal and reports whether the trailer matches.
package codec
