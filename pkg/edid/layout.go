// Package edid builds synthetic EDID 1.4 descriptors with a single CEA-861
// extension block.
package edid

// Sizes
const (
	BlockSize      = 128
	Size           = 2 * BlockSize
	DescriptorSize = 18
	NameLength     = 13
)

// Base block byte offsets (VESA E-EDID 1.4)
const (
	OffsetHeader          = 0x00 // Fixed 8-byte header
	OffsetManufacturer    = 0x08 // PNP ID, 5-bit packed, big-endian
	OffsetProductCode     = 0x0A // Product code (2 bytes, little-endian)
	OffsetSerial          = 0x0C // Serial number (4 bytes, little-endian)
	OffsetMfgWeek         = 0x10 // Week of manufacture
	OffsetMfgYear         = 0x11 // Year of manufacture - 1990
	OffsetVersion         = 0x12 // EDID version
	OffsetRevision        = 0x13 // EDID revision
	OffsetVideoInput      = 0x14 // Video input definition
	OffsetScreenWidthCm   = 0x15 // Horizontal screen size (cm)
	OffsetScreenHeightCm  = 0x16 // Vertical screen size (cm)
	OffsetGamma           = 0x17 // (gamma*100)-100
	OffsetFeatures        = 0x18 // Feature support
	OffsetChromaticity    = 0x19 // Color characteristics (10 bytes)
	OffsetEstablished     = 0x23 // Established timings (3 bytes)
	OffsetStandard        = 0x26 // Standard timings (16 bytes)
	OffsetDTD             = 0x36 // Detailed timing descriptor 1
	OffsetNameDescriptor  = 0x48 // Display product name descriptor
	OffsetRangeDescriptor = 0x5A // Display range limits descriptor
	OffsetDummyDescriptor = 0x6C // Dummy descriptor
	OffsetExtensionCount  = 0x7E // Number of extension blocks
	OffsetChecksum        = 0x7F // Base block checksum
)

// Name descriptor payload starts after the 5-byte descriptor header.
const OffsetName = OffsetNameDescriptor + 5

// Detailed timing descriptor field offsets, relative to the descriptor start
const (
	dtdPixelClock  = 0  // Pixel clock in 10 kHz units (2 bytes, little-endian)
	dtdHActiveLo   = 2  // Horizontal active, low 8 bits
	dtdHBlankLo    = 3  // Horizontal blanking, low 8 bits
	dtdHHigh       = 4  // Upper nibbles: active<<4 | blanking
	dtdVActiveLo   = 5  // Vertical active, low 8 bits
	dtdVBlankLo    = 6  // Vertical blanking, low 8 bits
	dtdVHigh       = 7  // Upper nibbles: active<<4 | blanking
	dtdHSyncOffset = 8  // Horizontal front porch, low 8 bits
	dtdHSyncWidth  = 9  // Horizontal sync pulse, low 8 bits
	dtdVSync       = 10 // Vertical front porch<<4 | sync pulse
	dtdSyncHigh    = 11 // Upper 2 bits of the four sync fields
	dtdHImageLo    = 12 // Horizontal image size (mm), low 8 bits
	dtdVImageLo    = 13 // Vertical image size (mm), low 8 bits
	dtdImageHigh   = 14 // Upper nibbles: h<<4 | v
	dtdHBorder     = 15 // Horizontal border
	dtdVBorder     = 16 // Vertical border
	dtdFeatures    = 17 // Interlace, stereo and sync type

	// Non-interlaced, digital separate sync
	dtdDigitalSeparateSync = 0x18
)

// CEA-861 extension byte offsets, absolute within the 256-byte buffer
const (
	OffsetCEA           = BlockSize
	OffsetCEARevision   = OffsetCEA + 1
	OffsetCEADTDStart   = OffsetCEA + 2 // DTD offset relative to OffsetCEA
	OffsetCEAFlags      = OffsetCEA + 3
	OffsetCEADataBlocks = OffsetCEA + 4
	OffsetCEAChecksum   = Size - 1
)

// CEA-861 constants
const (
	ceaTag      = 0x02
	ceaRevision = 0x03

	// Underscan, basic audio, YCbCr 4:4:4
	ceaSupportFlags = 0x70
)

// Header, identity and display characteristic constants
var (
	header       = [8]byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}
	manufacturer = [2]byte{0x56, 0x24} // "VHD"

	// The same primaries are written in HDR and SDR mode.
	chromaticity = [10]byte{0xEE, 0x91, 0xA3, 0x54, 0x4C, 0x99, 0x26, 0x0F, 0x50, 0x54}
)

const (
	productCodeHDR = 0x4844 // "HD"
	productCodeSDR = 0x5344 // "SD"

	mfgWeek     = 1
	mfgYear     = 33 // 2023
	edidVersion = 1
	edidRev     = 4

	// Digital, 10-bit, DisplayPort
	videoInputHDR = 0xB5
	// Digital, 8-bit, DisplayPort
	videoInputSDR = 0xA5

	gamma22 = 220

	// RGB+YCbCr 4:4:4, preferred timing, continuous frequency
	featuresHDR = 0x1A
	// RGB 4:4:4, sRGB, preferred timing, continuous frequency
	featuresSDR = 0x1E

	unusedStandardTiming = 0x01
)

// Display descriptor tags
const (
	tagProductName = 0xFC
	tagRangeLimits = 0xFD
	tagDummy       = 0x10
)

// Range limits
const (
	minVRateFloor   = 24
	vRateSpread     = 20
	minHRateKHz     = 30
	maxHRateKHz     = 160
	maxPixelClock10 = 220 // 2200 MHz in 10 MHz units
	rangeNoGTF      = 0x00
	rangeLineFeed   = 0x0A
	paddingSpace    = 0x20
)
