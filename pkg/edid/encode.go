package edid

import (
	"encoding/binary"
	"math"
)

// Assumed pixel density for the physical size estimate
const assumedDPI = 96

// CEA-861 data block header: tag in bits 7-5, payload length in bits 4-0
const (
	ceaTagVendor   = 3
	ceaTagExtended = 7

	extTagVideoCapability = 0x00
	extTagColorimetry     = 0x05
	extTagHDRStatic       = 0x06
)

var (
	// BT.2020 RGB, BT.2020 YCC, BT.2020 cYCC; no gamut metadata
	colorimetryPayload = []byte{0xE0, 0x00}

	// EOTF SDR|HDR|PQ, static metadata type 1, max 1000 cd/m²,
	// max frame-average 400 cd/m², min 0.05 cd/m²
	hdrStaticPayload = []byte{0x07, 0x01, 0x78, 0x5A, 0x32}

	// No quantization or scan behaviour advertised
	videoCapabilityPayload = []byte{0x00}

	// HDMI Forum OUI C4-5D-D8 (little-endian), version 1, max TMDS 600 MHz
	hdmiForumPayload = []byte{0xD8, 0x5D, 0xC4, 0x01, 0x78, 0x00, 0x00}
)

// Encode builds the 256-byte EDID for a request. It accepts any input:
// fields that exceed their width are truncated and the name is cut or
// space-padded to 13 bytes.
func Encode(req Request) [Size]byte {
	var buf [Size]byte
	t := req.Timing()

	encodeBase(buf[:BlockSize], req, t)
	encodeCEA(buf[:], req)

	return buf
}

func encodeBase(b []byte, req Request, t Timing) {
	copy(b[OffsetHeader:], header[:])
	copy(b[OffsetManufacturer:], manufacturer[:])

	product := uint16(productCodeSDR)
	if req.HDR {
		product = productCodeHDR
	}
	binary.LittleEndian.PutUint16(b[OffsetProductCode:], product)
	binary.LittleEndian.PutUint32(b[OffsetSerial:], serialNumber(req))

	b[OffsetMfgWeek] = mfgWeek
	b[OffsetMfgYear] = mfgYear
	b[OffsetVersion] = edidVersion
	b[OffsetRevision] = edidRev

	if req.HDR {
		b[OffsetVideoInput] = videoInputHDR
	} else {
		b[OffsetVideoInput] = videoInputSDR
	}

	hCm, vCm := ScreenSizeCm(int(req.Width), int(req.Height))
	b[OffsetScreenWidthCm] = byte(min(hCm, 0xFF))
	b[OffsetScreenHeightCm] = byte(min(vCm, 0xFF))
	b[OffsetGamma] = gamma22

	if req.HDR {
		b[OffsetFeatures] = featuresHDR
	} else {
		b[OffsetFeatures] = featuresSDR
	}

	copy(b[OffsetChromaticity:], chromaticity[:])

	// Established timings stay zero; standard timings are all unused.
	for i := OffsetStandard; i < OffsetDTD; i++ {
		b[i] = unusedStandardTiming
	}

	encodeDTD(b[OffsetDTD:OffsetDTD+DescriptorSize], t, hCm*10, vCm*10)
	encodeName(b[OffsetNameDescriptor:OffsetNameDescriptor+DescriptorSize], req.Name)
	encodeRangeLimits(b[OffsetRangeDescriptor:OffsetRangeDescriptor+DescriptorSize], int(req.RefreshHz))
	encodeDisplayDescriptor(b[OffsetDummyDescriptor:OffsetDummyDescriptor+DescriptorSize], tagDummy)

	b[OffsetExtensionCount] = 1
	b[OffsetChecksum] = Checksum(b[:OffsetChecksum])
}

// serialNumber packs the mode so that every mode gets a distinct serial
func serialNumber(req Request) uint32 {
	return uint32(req.Width)<<16 | uint32(req.Height)<<4 | uint32(req.RefreshHz&0x0F)
}

// ScreenSizeCm estimates the physical size of a panel at 96 DPI
func ScreenSizeCm(width, height int) (hCm, vCm int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	diagonalIn := math.Sqrt(float64(width*width+height*height)) / assumedDPI
	aspect := float64(width) / float64(height)
	inv := 1 / aspect

	hCm = int(diagonalIn * 2.54 / math.Sqrt(1+float64(inv*inv)))
	vCm = int(float64(hCm) / aspect)
	return hCm, vCm
}

// encodeDTD packs a detailed timing descriptor. The upper bits of each
// 12-bit value share a byte with its partner; overflow is truncated.
func encodeDTD(d []byte, t Timing, hImageMm, vImageMm int) {
	binary.LittleEndian.PutUint16(d[dtdPixelClock:], t.EncodedClock())

	d[dtdHActiveLo] = byte(t.HActive)
	d[dtdHBlankLo] = byte(t.HBlank)
	d[dtdHHigh] = byte((t.HActive>>8)<<4 | t.HBlank>>8)

	d[dtdVActiveLo] = byte(t.VActive)
	d[dtdVBlankLo] = byte(t.VBlank)
	d[dtdVHigh] = byte((t.VActive>>8)<<4 | t.VBlank>>8)

	d[dtdHSyncOffset] = byte(t.HSyncOffset)
	d[dtdHSyncWidth] = byte(t.HSyncWidth)
	d[dtdVSync] = byte((t.VSyncOffset&0x0F)<<4 | t.VSyncWidth&0x0F)
	d[dtdSyncHigh] = byte((t.HSyncOffset>>8)&0x03<<6 |
		(t.HSyncWidth>>8)&0x03<<4 |
		(t.VSyncOffset>>4)&0x03<<2 |
		(t.VSyncWidth>>4)&0x03)

	d[dtdHImageLo] = byte(hImageMm)
	d[dtdVImageLo] = byte(vImageMm)
	d[dtdImageHigh] = byte((hImageMm>>8)<<4 | vImageMm>>8)

	d[dtdHBorder] = 0
	d[dtdVBorder] = 0
	d[dtdFeatures] = dtdDigitalSeparateSync
}

func encodeDisplayDescriptor(d []byte, tag byte) {
	d[0], d[1], d[2], d[3], d[4] = 0x00, 0x00, 0x00, tag, 0x00
}

func encodeName(d []byte, name string) {
	encodeDisplayDescriptor(d, tagProductName)
	nb := NameBytes(name)
	copy(d[5:], nb[:])
}

// NameBytes returns the 13-byte product name field: non-ASCII characters
// become '?', long names are cut and short ones padded with spaces.
func NameBytes(name string) [NameLength]byte {
	var out [NameLength]byte
	n := 0
	for _, r := range name {
		if n == NameLength {
			break
		}
		if r > 0x7F {
			r = '?'
		}
		out[n] = byte(r)
		n++
	}
	for ; n < NameLength; n++ {
		out[n] = paddingSpace
	}
	return out
}

func encodeRangeLimits(d []byte, refreshHz int) {
	encodeDisplayDescriptor(d, tagRangeLimits)
	d[5] = byte(max(minVRateFloor, refreshHz-vRateSpread))
	d[6] = byte(refreshHz + vRateSpread)
	d[7] = minHRateKHz
	d[8] = maxHRateKHz
	d[9] = maxPixelClock10
	d[10] = rangeNoGTF
	d[11] = rangeLineFeed
	for i := 12; i < DescriptorSize; i++ {
		d[i] = paddingSpace
	}
}

// dataBlock prefixes a payload with its CEA-861 header byte
func dataBlock(tag byte, payload ...byte) []byte {
	return append([]byte{tag<<5 | byte(len(payload))}, payload...)
}

func extendedBlock(extTag byte, payload []byte) []byte {
	return dataBlock(ceaTagExtended, append([]byte{extTag}, payload...)...)
}

// ceaDataBlocks returns the data block collection in emission order
func ceaDataBlocks(hdr bool) []byte {
	var blocks []byte
	if hdr {
		blocks = append(blocks, extendedBlock(extTagColorimetry, colorimetryPayload)...)
		blocks = append(blocks, extendedBlock(extTagHDRStatic, hdrStaticPayload)...)
	}
	blocks = append(blocks, extendedBlock(extTagVideoCapability, videoCapabilityPayload)...)
	blocks = append(blocks, dataBlock(ceaTagVendor, hdmiForumPayload...)...)
	return blocks
}

// encodeCEA fills the extension block. The base block DTD must already be
// in place since it is duplicated after the data blocks.
func encodeCEA(buf []byte, req Request) {
	buf[OffsetCEA] = ceaTag
	buf[OffsetCEARevision] = ceaRevision
	buf[OffsetCEAFlags] = ceaSupportFlags

	offset := OffsetCEADataBlocks
	offset += copy(buf[offset:OffsetCEAChecksum], ceaDataBlocks(req.HDR))
	buf[OffsetCEADTDStart] = byte(offset - OffsetCEA)

	if offset+DescriptorSize <= OffsetCEAChecksum {
		offset += copy(buf[offset:], buf[OffsetDTD:OffsetDTD+DescriptorSize])
	}
	for ; offset < OffsetCEAChecksum; offset++ {
		buf[offset] = 0
	}

	buf[OffsetCEAChecksum] = Checksum(buf[OffsetCEA:OffsetCEAChecksum])
}

// Checksum returns the byte that makes the sum of data plus itself 0 mod 256
func Checksum(data []byte) byte {
	var sum byte
	for _, v := range data {
		sum += v
	}
	return -sum
}
